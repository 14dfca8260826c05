package main

import (
	"errors"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"smm-planner/internal/infra/config"
	"smm-planner/internal/infra/db"
	applog "smm-planner/internal/infra/log"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	if cfg.PGDSN == "" {
		logger.Fatal().Msg("migrate: не указан PG_DSN")
	}
	m, err := db.NewMigrator(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: не удалось создать мигратор")
	}
	defer m.Close()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps <= 0 {
				logger.Fatal().Str("arg", os.Args[2]).Msg("migrate: некорректное число шагов")
			}
		}
		err = m.Steps(-steps)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			logger.Info().Msg("migrate: миграции ещё не применялись")
			return
		}
		if verr != nil {
			logger.Fatal().Err(verr).Msg("migrate: не удалось получить версию")
		}
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrate: текущая версия")
		return
	default:
		logger.Fatal().Str("cmd", cmd).Msg("migrate: ожидали up, down [n] или version")
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal().Err(err).Str("cmd", cmd).Msg("migrate: ошибка")
	}
	logger.Info().Str("cmd", cmd).Msg("migrate: готово")
}
