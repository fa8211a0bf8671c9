package routes

import (
	"customerhub-backend/config"
	"customerhub-backend/controllers"
	"customerhub-backend/metrics"
	"customerhub-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the router wires into controllers.
type Dependencies struct {
	Config    *config.Config
	Log       *logrus.Logger
	DB        *gorm.DB
	Customers controllers.CustomerStore
	Todos     controllers.TodoStore
	// RateLimiter is optional; requests are not limited when nil.
	RateLimiter *config.RateLimiter
}

func SetupRouter(deps Dependencies) *gin.Engine {
	utils.RegisterJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(config.RequestID())
	r.Use(cors.New(corsConfig(deps.Config.Origins())))
	r.Use(config.PerformanceLogger(deps.Log, deps.Config.SlowRequestThreshold))
	r.Use(metrics.Middleware())
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware())
	}

	health := controllers.NewHealthController(deps.DB, deps.Log)
	r.GET("/healthz", health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	customerController := controllers.NewCustomerController(deps.Customers, deps.Log)
	customers := r.Group("/customers")
	{
		customers.GET("", customerController.GetCustomers)
		customers.POST("", customerController.CreateCustomer)
		customers.GET("/:id", customerController.GetCustomer)
		customers.PUT("/:id", customerController.UpdateCustomer)
		customers.DELETE("/:id", customerController.DeleteCustomer)
	}

	todoController := controllers.NewTodoController(deps.Todos, deps.Log)
	todos := r.Group("/todo")
	{
		todos.GET("", todoController.GetTodos)
		todos.POST("", todoController.CreateTodo)
		todos.GET("/:id", todoController.GetTodo)
		todos.PUT("/:id", todoController.UpdateTodo)
		todos.PATCH("/:id", todoController.PatchTodo)
		todos.DELETE("/:id", todoController.DeleteTodo)
	}

	return r
}

// corsConfig allows the listed origins, or any origin without credentials
// when the list is empty or contains "*".
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", config.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", config.RequestIDHeader},
		AllowCredentials: true,
		AllowOrigins:     origins,
	}
	for _, o := range origins {
		if o == "*" {
			origins = nil
			break
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		cfg.AllowOrigins = nil
	}
	return cfg
}
