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
	args := config.DefaultTrainArgs()
	p := arg.MustParse(&args)
	cfg, err := args.Config()
	if err != nil {
		p.Fail(err.Error())
	}

	logFile, err := util.InitLogger(cfg.RunsDir, "train-"+cfg.Model.Kind.String(), args.Verbose)
	if err != nil {
		log.WithError(err).Fatal("cannot set up logging")
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	device := ml.Setup(cfg.CPU, cfg.Data.Seed)
	if err := ml.Train(ctx, cfg, device); err != nil {
		util.Logger.WithError(err).Fatal("training failed")
	}
	util.Logger.Info("training finished")
}
