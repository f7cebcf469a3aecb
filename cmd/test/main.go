package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"actrec/config"
	"actrec/ml"
	"actrec/util"

	arg "github.com/alexflint/go-arg"
	log "github.com/sirupsen/logrus"
)

func main() {
	args := config.DefaultEvalArgs()
	p := arg.MustParse(&args)
	cfg, err := args.Config()
	if err != nil {
		p.Fail(err.Error())
	}
	if args.Verbose {
		util.Logger.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	device := ml.Setup(cfg.CPU, cfg.Data.Seed)
	if _, err := ml.Evaluate(ctx, cfg, device); err != nil {
		util.Logger.WithError(err).Fatal("evaluation failed")
	}
}
