package main

import (
	"CourseLoom/internal/app"
	"CourseLoom/internal/config"

	"github.com/gin-gonic/gin"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	cfg := config.MustLoad()
	app.Run(cfg)
}
