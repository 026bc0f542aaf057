package http

import (
	"CourseLoom/internal/delivery/http/controllers"
	"CourseLoom/internal/models"
	"CourseLoom/internal/service"
	"CourseLoom/pkg/logger"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRoutes(l logger.Log, u service.Collection) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(cors.New(config))

	statusController := controllers.NewStatusHandler()
	authController := controllers.NewAuthHandler(l, u.AuthService)
	courseController := controllers.NewCourseHandler(l, u.CourseService)
	categoryController := controllers.NewCategoryHandler(l, u.CategoryService)
	sectionController := controllers.NewSectionHandler(l, u.SectionService)
	fileController := controllers.NewFileHandler(l, u.FileService)

	v1 := r.Group("/v1", controllers.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)

		v1.GET("/me", authController.AuthMiddleware, authController.Me)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/register", authController.Register)
			auth.POST("/refresh", authController.Refresh)
		}

		courses := v1.Group("/courses")
		{
			courses.GET("", authController.OptionalAuthMiddleware, courseController.Catalog)
			courses.GET("/visitor", courseController.VisitorCatalog)
			courses.GET("/search", courseController.SearchCourses)
			courses.GET("/:course_id", authController.OptionalAuthMiddleware, courseController.CourseByID)

			admin := courses.Group("", authController.AuthMiddleware, controllers.RoleMiddleware(models.RoleAdmin))
			{
				admin.POST("", courseController.CreateCourse)
				admin.PUT("/:course_id", courseController.UpdateCourse)
				admin.DELETE("/:course_id", courseController.DeleteCourse)
			}

			student := courses.Group("", authController.AuthMiddleware, controllers.RoleMiddleware(models.RoleStudent))
			{
				student.POST("/:course_id/subscribe", courseController.Subscribe)
				student.DELETE("/:course_id/subscribe", courseController.Unsubscribe)
				student.GET("/:course_id/subscription", courseController.SubscriptionStatus)
			}
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryController.List)

			admin := categories.Group("", authController.AuthMiddleware, controllers.RoleMiddleware(models.RoleAdmin))
			{
				admin.POST("", categoryController.Create)
				admin.PUT("/:category_id", categoryController.Rename)
				admin.DELETE("/:category_id", categoryController.Delete)
			}
		}

		sections := v1.Group("/sections")
		{
			sections.GET("/:section_id", sectionController.SectionByID)
			sections.GET("/:section_id/descendants", sectionController.Descendants)
			sections.GET("/:section_id/ancestors", sectionController.Ancestors)

			admin := sections.Group("", authController.AuthMiddleware, controllers.RoleMiddleware(models.RoleAdmin))
			{
				admin.POST("", sectionController.Insert)
				admin.PATCH("/:section_id/move", sectionController.Move)
				admin.DELETE("/:section_id", sectionController.Delete)
			}
		}

		files := v1.Group("/files")
		{
			files.GET("/:file_id/render", fileController.Render)
			files.GET("/:file_id/url", fileController.Link)

			admin := files.Group("", authController.AuthMiddleware, controllers.RoleMiddleware(models.RoleAdmin))
			{
				admin.GET("", fileController.List)
				admin.POST("", fileController.Create)
				admin.PUT("/:file_id", fileController.Replace)
				admin.DELETE("/:file_id", fileController.Delete)
			}
		}
	}
	return r
}
