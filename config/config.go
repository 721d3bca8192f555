package config

import (
	"flag"
	"net"
	"regexp"
	"strconv"
	"time"
)

type Config struct {
	Addr          string
	DBPath        string
	DraftPath     string
	QuizTimeLimit time.Duration
	Seed          bool
	Debug         bool
}

func ParseFlags() (cfg Config, err error) {
	var host string
	flag.StringVar(&host, "host", "0.0.0.0", "listen host name (default 0.0.0.0)")
	var port uint
	flag.UintVar(&port, "port", 8080, "listen port number (default 8080)")
	flag.StringVar(&cfg.DBPath, "db-path", "bancalocal.sqlite", "path to SQLite3 DB file (default bancalocal.sqlite)")
	flag.StringVar(&cfg.DraftPath, "draft-path", "bancalocal.drafts.json", "path to the draft/autosave slot file")
	var limit uint
	flag.UintVar(&limit, "quiz-time-limit", 30, "quiz countdown limit in minutes (default 30)")
	flag.BoolVar(&cfg.Seed, "seed", false, "seed demo records on first start")
	flag.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.QuizTimeLimit = time.Duration(limit) * time.Minute

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
