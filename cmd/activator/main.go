package main

import (
	"github.com/sirupsen/logrus"

	"github.com/kinecosystem/agora-activator/app"
	"github.com/kinecosystem/agora-activator/server"
)

func main() {
	if err := app.Run(server.NewApp()); err != nil {
		logrus.WithError(err).Fatal("error running activator")
	}
}
