package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/lvdashuaibi/awardvote/config"
	"github.com/lvdashuaibi/awardvote/internal/identity"
	"github.com/lvdashuaibi/awardvote/internal/service"
)

// GraphQLServer GraphQL服务器
type GraphQLServer struct {
	schema *graphql.Schema
	engine *gin.Engine
	server *http.Server
	votes  *service.VoteService
	log    *slog.Logger
}

// NewGraphQLServer 创建GraphQL服务器并注册路由
func NewGraphQLServer(
	cfg config.Config,
	votes *service.VoteService,
	admin *service.AdminService,
	verifier *identity.Verifier,
	logger *slog.Logger,
) *GraphQLServer {
	if logger == nil {
		logger = slog.Default()
	}

	resolver := NewResolver(votes, admin, logger)

	// 解析Schema并创建GraphQL实例
	schema := graphql.MustParseSchema(schemaString, resolver)

	s := &GraphQLServer{
		schema: schema,
		votes:  votes,
		log:    logger,
	}
	s.engine = s.routes(cfg, verifier)
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: s.engine,
	}
	return s
}

func (s *GraphQLServer) routes(cfg config.Config, verifier *identity.Verifier) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	// Healthcheck
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	path := cfg.GraphQL.Path
	if path == "" {
		path = "/graphql"
	}

	authed := r.Group("/", identity.Middleware(verifier))
	{
		handler := gin.WrapH(&relay.Handler{Schema: s.schema})
		authed.POST(path, handler)
		authed.GET(path, handler)
		authed.GET("/api/results", s.results)
	}

	// 设置GraphQL Playground
	page := strings.ReplaceAll(playgroundHTML, "{{endpoint}}", path)
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	})

	return r
}

// results 以JSON返回计票结果，附带展示文本
func (s *GraphQLServer) results(c *gin.Context) {
	results, err := s.votes.Results(c.Request.Context())
	if err != nil {
		s.log.Error("计算结果失败", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "无法计算结果"})
		return
	}

	type resultView struct {
		CategoryID   string `json:"categoryId"`
		CategoryName string `json:"categoryName"`
		Status       string `json:"status"`
		StatusLabel  string `json:"statusLabel"`
		WinnerLabel  string `json:"winnerLabel"`
		TotalVotes   int    `json:"totalVotes"`
		Ranked       any    `json:"ranked"`
	}

	views := make([]resultView, 0, len(results))
	for _, r := range results {
		views = append(views, resultView{
			CategoryID:   r.CategoryID,
			CategoryName: r.CategoryName,
			Status:       string(r.Status),
			StatusLabel:  StatusLabel(r.Status),
			WinnerLabel:  WinnerLabel(r),
			TotalVotes:   r.TotalVotes,
			Ranked:       r.Ranked,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": views})
}

// Handler 返回HTTP处理器
func (s *GraphQLServer) Handler() http.Handler {
	return s.engine
}

// Start 启动GraphQL服务器，正常关闭时返回 nil
func (s *GraphQLServer) Start() error {
	s.log.Info("GraphQL服务已启动", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止接收新请求并等待处理中的请求完成
func (s *GraphQLServer) Shutdown(ctx context.Context) error {
	s.log.Info("GraphQL服务正在关闭")
	return s.server.Shutdown(ctx)
}

// playgroundHTML GraphQL Playground HTML
const playgroundHTML = `
<!DOCTYPE html>
<html>
<head>
  <meta charset=utf-8/>
  <meta name="viewport" content="user-scalable=no, initial-scale=1.0, minimum-scale=1.0, maximum-scale=1.0, minimal-ui">
  <title>Award Vote GraphQL Playground</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react@1.7.22/build/static/css/index.css" />
  <link rel="shortcut icon" href="https://cdn.jsdelivr.net/npm/graphql-playground-react@1.7.22/build/favicon.png" />
  <script src="https://cdn.jsdelivr.net/npm/graphql-playground-react@1.7.22/build/static/js/middleware.js"></script>
</head>
<body>
  <div id="root">
    <style>
      body {
        background-color: rgb(23, 42, 58);
        font-family: Open Sans, sans-serif;
        height: 90vh;
      }
      #root {
        height: 100%;
        width: 100%;
        display: flex;
        align-items: center;
        justify-content: center;
      }
      .loading {
        font-size: 32px;
        font-weight: 200;
        color: rgba(255, 255, 255, .6);
        margin-left: 20px;
      }
      img {
        width: 78px;
        height: 78px;
      }
      .title {
        font-weight: 400;
      }
    </style>
    <img src='https://cdn.jsdelivr.net/npm/graphql-playground-react@1.7.22/build/logo.png' alt=''>
    <div class="loading"> 
      <span class="title">Award Vote GraphQL Playground</span>
    </div>
  </div>
  <script>window.addEventListener('load', function (event) {
      GraphQLPlayground.init(document.getElementById('root'), {
        endpoint: '{{endpoint}}'
      })
    })</script>
</body>
</html>
`
