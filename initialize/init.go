package initialize

import (
	"fmt"
	"net/http"

	"cellar/app/controllers"
	"cellar/app/db"
	jwtutil "cellar/app/jwt"
	"cellar/app/mailer"
	"cellar/app/middleware"
	"cellar/app/models"
	"cellar/app/repo"
	"cellar/app/services"
	"cellar/app/session"
	"cellar/app/token"
	"cellar/app/views"
	"cellar/config"
	"cellar/global"
	"cellar/router"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Router   http.Handler
	Users    *services.UserService
	Roles    *services.RoleService
	Sessions *session.Manager
}

func Build(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	global.Config = cfg

	gdb, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	global.Mdb = gdb

	if err := gdb.AutoMigrate(&models.User{}, &models.Role{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	global.Rdb = rdb

	// Repositories and services
	userRepo := repo.NewUserRepository(gdb)
	roleRepo := repo.NewRoleRepository(gdb)
	roleSvc := services.NewRoleService(roleRepo)
	if err := roleSvc.SeedDefaults(); err != nil {
		return nil, fmt.Errorf("seed roles: %w", err)
	}

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		UseTLS:   cfg.SMTP.UseTLS,
		SiteName: cfg.SiteTitle,
	})
	userSvc := services.NewUserService(userRepo, token.NewIssuer(), sender, cfg.SiteTitle)

	// Sessions
	signer := &jwtutil.Signer{Secret: []byte(cfg.Session.Secret), Issuer: "cellar", TTL: cfg.Session.TTL}
	sessions := session.NewManager(session.NewRedisStore(rdb), signer, userRepo, cfg.Session.TTL)

	// Views and controllers
	renderer, err := views.New(cfg.SiteTitle)
	if err != nil {
		return nil, err
	}
	authCtrl := controllers.NewAuthController(userSvc, sessions, renderer, cfg.Server.BaseURL)
	pagesCtrl := controllers.NewPagesController(sessions, renderer)
	adminCtrl := controllers.NewAdminController(sessions, renderer)
	mw := &middleware.Auth{Sessions: sessions, Roles: roleSvc}

	h := router.New(pagesCtrl, authCtrl, adminCtrl, mw, http.Dir("public"))
	h = middleware.Logging(h)

	return &App{Cfg: cfg, DB: gdb, Router: h, Users: userSvc, Roles: roleSvc, Sessions: sessions}, nil
}
