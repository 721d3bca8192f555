package entity

import (
	"context"
	"sort"

	"github.com/dmorenog/bancalocal/store"
)

// The banking demo entities. Each is pure configuration over the shared
// Manager; the collection names and key fields follow the demo dataset.
var BankSpecs = []Spec{
	{
		Collection: "CLIENTES", KeyField: "id_cliente", AutoKey: true,
		Fields: []Field{
			{"id_cliente", Integer},
			{"nombre", String},
			{"apellido", String},
			{"dni", String},
			{"email", String},
			{"telefono", String},
			{"saldo_total", Decimal},
			{"activo", Boolean},
		},
	},
	{
		Collection: "CUENTAS", KeyField: "numero_cuenta", AutoKey: false,
		Fields: []Field{
			{"numero_cuenta", String},
			{"id_cliente", Integer},
			{"tipo_cuenta", String},
			{"saldo", Decimal},
			{"activa", Boolean},
		},
	},
	{
		Collection: "TRANSACCIONES", KeyField: "id_transaccion", AutoKey: true,
		Fields: []Field{
			{"id_transaccion", Integer},
			{"numero_cuenta", String},
			{"tipo", String},
			{"monto", Decimal},
			{"fecha", String},
			{"descripcion", String},
		},
	},
	{
		Collection: "EMPLEADOS", KeyField: "id_empleado", AutoKey: true,
		Fields: []Field{
			{"id_empleado", Integer},
			{"nombre", String},
			{"apellido", String},
			{"cargo", String},
			{"sucursal", String},
			{"salario", Decimal},
			{"activo", Boolean},
		},
	},
	{
		Collection: "PRESTAMOS", KeyField: "id_prestamo", AutoKey: true,
		Fields: []Field{
			{"id_prestamo", Integer},
			{"id_cliente", Integer},
			{"monto", Decimal},
			{"tasa_interes", Decimal},
			{"plazo_meses", Integer},
			{"aprobado", Boolean},
		},
	},
	{
		Collection: "TARJETAS_CREDITO", KeyField: "numero_tarjeta", AutoKey: false,
		Fields: []Field{
			{"numero_tarjeta", String},
			{"id_cliente", Integer},
			{"tipo", String},
			{"limite_credito", Decimal},
			{"saldo_actual", Decimal},
			{"activa", Boolean},
		},
	},
}

// Collections lists the store collections the banking entities need, for
// schema assembly at startup.
func Collections() []store.Collection {
	cols := make([]store.Collection, len(BankSpecs))
	for i, spec := range BankSpecs {
		cols[i] = spec.storeCollection()
	}
	return cols
}

// Registry holds one Manager per banking entity, looked up by collection
// name from URL parameters.
type Registry struct {
	managers map[string]*Manager
}

func NewRegistry(st store.Store) *Registry {
	reg := &Registry{managers: map[string]*Manager{}}
	for _, spec := range BankSpecs {
		reg.managers[spec.Collection] = NewManager(spec, st)
	}
	return reg
}

func (r *Registry) Lookup(collection string) (*Manager, bool) {
	m, ok := r.managers[collection]
	return m, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.managers))
	for name := range r.managers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SeedDemo loads the demo rows into every empty banking collection.
func (r *Registry) SeedDemo(ctx context.Context) error {
	for _, spec := range BankSpecs {
		if err := r.managers[spec.Collection].Seed(ctx, demoRows[spec.Collection]); err != nil {
			return err
		}
	}
	return nil
}

var demoRows = map[string][]store.Record{
	"CLIENTES": {
		{"nombre": "María", "apellido": "González", "dni": "28456789", "email": "maria.gonzalez@mail.com", "telefono": "11-4567-8901", "saldo_total": 125000.50, "activo": true},
		{"nombre": "Carlos", "apellido": "Rodríguez", "dni": "30123456", "email": "carlos.rodriguez@mail.com", "telefono": "11-2345-6789", "saldo_total": 87300.00, "activo": true},
		{"nombre": "Lucía", "apellido": "Fernández", "dni": "33987654", "email": "lucia.fernandez@mail.com", "telefono": "11-8765-4321", "saldo_total": 4520.75, "activo": false},
	},
	"CUENTAS": {
		{"numero_cuenta": "cuenta_1", "id_cliente": 1, "tipo_cuenta": "caja_ahorro", "saldo": 125000.50, "activa": true},
		{"numero_cuenta": "cuenta_2", "id_cliente": 2, "tipo_cuenta": "cuenta_corriente", "saldo": 87300.00, "activa": true},
	},
	"TRANSACCIONES": {
		{"numero_cuenta": "cuenta_1", "tipo": "deposito", "monto": 15000.00, "fecha": "2024-03-01", "descripcion": "Depósito en efectivo"},
		{"numero_cuenta": "cuenta_1", "tipo": "extraccion", "monto": 2500.00, "fecha": "2024-03-05", "descripcion": "Extracción cajero"},
		{"numero_cuenta": "cuenta_2", "tipo": "transferencia", "monto": 30000.00, "fecha": "2024-03-07", "descripcion": "Transferencia recibida"},
	},
	"EMPLEADOS": {
		{"nombre": "Jorge", "apellido": "Pereyra", "cargo": "cajero", "sucursal": "Centro", "salario": 450000.00, "activo": true},
		{"nombre": "Ana", "apellido": "Suárez", "cargo": "gerente", "sucursal": "Centro", "salario": 980000.00, "activo": true},
	},
	"PRESTAMOS": {
		{"id_cliente": 1, "monto": 500000.00, "tasa_interes": 45.5, "plazo_meses": 36, "aprobado": true},
		{"id_cliente": 3, "monto": 150000.00, "tasa_interes": 52.0, "plazo_meses": 12, "aprobado": false},
	},
	"TARJETAS_CREDITO": {
		{"numero_tarjeta": "4509-1234-5678-9010", "id_cliente": 1, "tipo": "visa", "limite_credito": 300000.00, "saldo_actual": 45200.30, "activa": true},
		{"numero_tarjeta": "5412-9876-5432-1098", "id_cliente": 2, "tipo": "mastercard", "limite_credito": 200000.00, "saldo_actual": 0.00, "activa": true},
	},
}
