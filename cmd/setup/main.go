package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	"cellar/app/db"
	"cellar/app/mailer"
	"cellar/app/models"
	"cellar/app/repo"
	"cellar/app/services"
	"cellar/app/token"
	"cellar/cmd/setup/ui"
	"cellar/config"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Where to write the config file")
	flag.Parse()

	if _, err := os.Stat(*configPath); err == nil {
		fmt.Fprintf(os.Stderr, "%s already exists; remove it to run setup again\n", *configPath)
		os.Exit(1)
	}

	apply := func(res ui.Result) error { return applySetup(*configPath, res) }
	if _, err := tea.NewProgram(ui.NewWizardModel(apply)).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "setup failed:", err)
		os.Exit(1)
	}
}

// applySetup writes the config file, prepares the database, and creates the
// initial admin account.
func applySetup(configPath string, res ui.Result) error {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("generate session secret: %w", err)
	}

	cfg := &config.Config{
		SiteTitle: res.SiteTitle,
		Server: config.Server{
			Host: "127.0.0.1",
			Port: 3000,
		},
		DB: config.DB{
			Driver: res.DBDriver,
			Path:   res.DBPath,
			Host:   res.DBHost,
			Port:   res.DBPort,
			User:   res.DBUser,
			Pass:   res.DBPass,
			Name:   res.DBName,
		},
		Redis: config.Redis{
			Addr:     res.RedisAddr,
			Password: res.RedisPassword,
		},
		Session: config.Session{
			Secret: hex.EncodeToString(secret),
			TTL:    time.Hour,
		},
		SMTP: config.SMTP{
			Host:     res.SMTPHost,
			Port:     res.SMTPPort,
			Username: res.SMTPUsername,
			Password: res.SMTPPassword,
			UseTLS:   res.SMTPUseTLS,
		},
	}
	cfg.Server.BaseURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	gdb, err := db.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.Role{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	roleSvc := services.NewRoleService(repo.NewRoleRepository(gdb))
	if err := roleSvc.SeedDefaults(); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		UseTLS:   cfg.SMTP.UseTLS,
		SiteName: cfg.SiteTitle,
	})
	userSvc := services.NewUserService(repo.NewUserRepository(gdb), token.NewIssuer(), sender, cfg.SiteTitle)
	if err := userSvc.EnsureAdmin(res.AdminName, res.AdminEmail, res.AdminPassword); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
