// @title Sprout API
// @description API for plant-care tracker "Sprout"
// @BasePath /api/v1
// @schemes http
package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verdant/sprout/internal/advice"
	"github.com/verdant/sprout/internal/api"
	"github.com/verdant/sprout/internal/limiter"
	"github.com/verdant/sprout/internal/migrate"
	"github.com/verdant/sprout/internal/repository"
	"github.com/verdant/sprout/internal/service"
	"github.com/verdant/sprout/pkg/cleanup"
	"github.com/verdant/sprout/pkg/config"
)

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	ctx := context.Background()
	if err := migrate.Up(ctx, dbCfg.ConnString()); err != nil {
		log.Fatal("applying migrations error: " + err.Error())
	}
	pool, err := pgxpool.New(ctx, dbCfg.ConnString())
	if err != nil {
		log.Fatal("creating connection pool error: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	defer cleanup.CleanUp()

	lim := limiter.NewPG(pool, map[string]limiter.Rule{
		limiter.ScopeLogin: {
			Window:      15 * time.Minute,
			MaxAttempts: cfg.GetInt("LOGIN_MAX_ATTEMPTS", 10),
		},
		limiter.ScopeRegister: {
			Window:      time.Hour,
			MaxAttempts: cfg.GetInt("REGISTER_MAX_ATTEMPTS", 5),
		},
	})

	// Without an API key the app still works, it just serves fallback advice
	var advisor advice.Advisor
	if key := cfg.GetString("GENAI_API_KEY"); key != "" {
		genaiAdvisor, err := advice.NewGenAIAdvisor(ctx, key, cfg.GetString("GENAI_MODEL"))
		if err != nil {
			log.Println("advice provider disabled: " + err.Error())
		} else {
			advisor = genaiAdvisor
		}
	} else {
		log.Println("GENAI_API_KEY not set, serving fallback advice only")
	}

	plantsRepo := repository.NewPlantsRepoWithConn(pool)
	remindersRepo := repository.NewRemindersRepoWithConn(pool)
	careLogsRepo := repository.NewCareLogsRepoWithConn(pool)

	sessionService := service.NewSessionService(
		repository.NewSessionsRepoWithConn(pool),
		time.Duration(cfg.GetInt("SESSION_TTL_HOURS", 24))*time.Hour,
	)
	sessionService.StartJanitor(time.Hour)

	serv := api.New(&api.ServicesList{
		UserService:    service.NewUserService(repository.NewUsersRepoWithConn(pool), lim),
		SessionService: sessionService,
		PlantsService:  service.NewPlantsService(plantsRepo, remindersRepo),
		CareService:    service.NewCareService(plantsRepo, careLogsRepo, remindersRepo, advisor),
	})
	err = serv.Run(cfg.GetString("API_ADDRESS"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
}
