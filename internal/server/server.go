package server

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/grandmaster/internal/database"
	"github.com/mdouchement/grandmaster/internal/server/hub"
	"github.com/mdouchement/grandmaster/internal/server/middlewares"
	"github.com/mdouchement/grandmaster/internal/server/service"
	"github.com/sirupsen/logrus"
)

// A Controller is an Iversion Of Control pattern used to init the server package.
type Controller struct {
	Version  string
	Database database.Client
	Logger   logrus.FieldLogger
	// Access key params
	SigningKey []byte
	// Change feed params
	FeedBuffer int
}

// EchoEngine instantiates the wep server.
func EchoEngine(ctrl Controller) *echo.Echo {
	if ctrl.Logger == nil {
		ctrl.Logger = logrus.StandardLogger()
	}

	engine := echo.New()
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	engine.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return websocket.IsWebSocketUpgrade(c.Request())
		},
	}))

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${path} (${bytes_in}) ${latency_human}\n",
	}))
	engine.Binder = middlewares.NewBinder()
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler(ctrl.Logger)

	engine.Pre(middleware.Rewrite(map[string]string{
		"/": "/version",
	}))

	////////////
	// Router //
	////////////

	events := hub.New(ctrl.FeedBuffer, ctrl.Logger)
	writes := service.New(ctrl.Database, events)

	router := engine.Group("")
	restricted := router.Group("")
	restricted.Use(middlewares.AccessKey(ctrl.SigningKey))

	// generic handlers
	//
	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})

	//
	// collection handlers
	//
	collection := &collection{
		db:      ctrl.Database,
		service: writes,
	}
	restricted.GET("/collections/:id", collection.Show)
	restricted.PUT("/collections/:id", collection.Save)
	restricted.GET("/collections/:id/items", collection.Items)

	//
	// item handlers
	//
	item := &item{
		service: writes,
	}
	restricted.POST("/items", item.Create)
	restricted.POST("/items/batch", item.CreateBatch)
	restricted.PATCH("/items/:id", item.Update)
	restricted.DELETE("/items/:id", item.Delete)

	//
	// change feed handlers
	//
	feed := &feed{
		hub:    events,
		logger: ctrl.Logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool {
				return true // Authorized by the access key.
			},
		},
	}
	restricted.GET("/collections/:id/feed", feed.Subscribe)

	return engine
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}
