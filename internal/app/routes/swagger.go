package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yigit/volunteerhub/docs"
)

// SetupSwagger configures Swagger documentation routes. basePath overrides the
// path prefix advertised in the generated spec when the API sits behind a proxy.
func SetupSwagger(router *gin.Engine, basePath string) {
	if basePath != "" {
		docs.SwaggerInfo.BasePath = basePath
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("/swagger/doc.json"),
		ginSwagger.DefaultModelsExpandDepth(1),
	))
}
