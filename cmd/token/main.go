// token 为本地开发签发投票人令牌
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lvdashuaibi/awardvote/config"
	"github.com/lvdashuaibi/awardvote/internal/identity"
)

func main() {
	var (
		configPath string
		uid        string
		email      string
	)

	flag.StringVar(&configPath, "config", "config/config.yaml", "配置文件路径")
	flag.StringVar(&uid, "uid", "", "投票人ID，为空时随机生成")
	flag.StringVar(&email, "email", "", "投票人邮箱")
	flag.Parse()

	if email == "" {
		log.Fatal("email 不能为空")
	}
	if uid == "" {
		uid = uuid.NewString()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	token, err := identity.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Issue(uid, email)
	if err != nil {
		log.Fatalf("签发令牌失败: %v", err)
	}
	fmt.Println(token)
}
