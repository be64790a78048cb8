// Command yieldstub serves a deterministic stand-in for the crop yield
// prediction service.
package main

import (
	"flag"

	"github.com/gin-gonic/gin"

	"farmgrid/internal/logging"
)

func main() {
	addr := flag.String("addr", ":8089", "listen address")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	if err := logging.Configure(*level, "text"); err != nil {
		logging.L.Fatal(err)
	}
	gin.SetMode(gin.ReleaseMode)
	log := logging.For("yieldstub")
	log.WithField("addr", *addr).Info("serving predictions")
	if err := SetupRouter().Run(*addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
