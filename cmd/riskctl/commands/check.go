package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "의존성 연결 점검",
	Long: `설정된 외부 의존성을 점검합니다.

이 명령어는:
- PostgreSQL 연결 및 풀 통계 (DATABASE_URL 설정 시)
- Redis 연결 (REDIS_ENABLED 설정 시)
- VaR/ES 엔진 시험 호출

Example:
  go run ./cmd/riskctl check`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(out, "=== riskscope Dependency Check ===")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	d, err := buildDeps(ctx)
	if err != nil {
		PrintError(err.Error())
		return err
	}
	defer d.close()
	PrintSuccess(fmt.Sprintf("Config loaded (ENV: %s)", d.cfg.Env))

	// Database
	if d.db == nil {
		PrintWarning("Database disabled (DATABASE_URL not set)")
	} else {
		fmt.Fprintf(out, "   Database URL: %s\n", maskPassword(d.cfg.Database.URL))
		status, err := d.db.HealthCheck(ctx)
		if err != nil {
			PrintError(fmt.Sprintf("Database health check failed: %v", err))
			return err
		}
		PrintSuccess(fmt.Sprintf("Database healthy (%v)", status.ResponseTime))
		PrintKeyValue("Max Connections", fmt.Sprint(status.Stats.MaxConns), 20)
		PrintKeyValue("Total Connections", fmt.Sprint(status.Stats.TotalConns), 20)
		PrintKeyValue("Acquired", fmt.Sprint(status.Stats.AcquiredConns), 20)
		PrintKeyValue("Idle", fmt.Sprint(status.Stats.IdleConns), 20)
	}

	// Redis
	if d.rdb.Enabled() {
		rtt, err := d.rdb.Ping(ctx)
		if err != nil {
			PrintError(err.Error())
			return err
		}
		PrintSuccess(fmt.Sprintf("Redis connected (%s, %v)", d.rdb.Addr(), rtt))
	} else {
		PrintWarning("Redis disabled, prices are fetched on every request")
	}

	// VaR/ES engine
	engine, err := d.engine()
	if err != nil {
		PrintError(err.Error())
		return err
	}

	engineStart := time.Now()
	res, err := engine.Compute(ctx, 0.001, 0.02)
	if err != nil {
		PrintError(fmt.Sprintf("VaR engine (%s) failed: %v", d.cfg.VaREngine.Mode, err))
		return err
	}
	PrintSuccess(fmt.Sprintf("VaR engine (%s) responded in %v", d.cfg.VaREngine.Mode, time.Since(engineStart)))
	PrintKeyValue("Probe VaR/ES", fmt.Sprintf("%.4f / %.4f", res.VaR, res.ES), 20)

	fmt.Fprintln(out)
	PrintSuccess("All checks passed")
	return nil
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
