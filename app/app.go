package app

import (
	"github.com/dmorenog/bancalocal/config"
	"github.com/dmorenog/bancalocal/draft"
	"github.com/dmorenog/bancalocal/entity"
	"github.com/dmorenog/bancalocal/store"
	"github.com/dmorenog/bancalocal/survey"
)

// App bundles the owned singletons: one store gateway, one draft slot, one
// manager registry. Controllers receive it by value; nothing lives in a
// package-level global.
type App struct {
	Store    store.Store
	Drafts   *draft.Slot
	Registry *entity.Registry
	Surveys  *survey.Service
	Attempts *survey.AttemptManager
	Config   config.Config
}
