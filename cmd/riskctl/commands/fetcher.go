package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/internal/scheduler/jobs"
)

// fetcherCmd represents the fetcher command
var fetcherCmd = &cobra.Command{
	Use:   "fetcher",
	Short: "가격 데이터 수집 도구",
	Long: `Yahoo Finance와 FRED에서 일별 가격 이력을 가져옵니다.

Example:
  go run ./cmd/riskctl fetcher warm
  go run ./cmd/riskctl fetcher warm AAPL SPY US_HPI`,
}

// fetcherWarmCmd represents the warm subcommand
var fetcherWarmCmd = &cobra.Command{
	Use:   "warm [ASSET ...]",
	Short: "가격 캐시 워밍",
	Long: `지정된 자산(기본: 전체 메타데이터 테이블)의 캐시를 비우고 다시 가져옵니다.

Fetched histories land in Redis and, when DATABASE_URL is set, in PostgreSQL.`,
	RunE: runFetcherWarm,
}

func init() {
	rootCmd.AddCommand(fetcherCmd)
	fetcherCmd.AddCommand(fetcherWarmCmd)
}

func runFetcherWarm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	assets := make([]string, len(args))
	for i, a := range args {
		assets[i] = strings.ToUpper(a)
	}

	job := jobs.NewWarmCacheJob(d.source, assets, d.cfg.WarmupSchedule, d.log)

	start := time.Now()
	PrintHeader("Price Cache Warm-up", [][2]string{
		{"Timestamp", start.Format("2006-01-02 15:04:05")},
		{"Assets", strings.Join(args, ", ")},
	})

	res, err := job.Warm(ctx)
	if err != nil {
		return fmt.Errorf("warm-up: %w", err)
	}

	failed := make([]string, 0, len(res.Failed))
	for id := range res.Failed {
		failed = append(failed, id)
	}
	sort.Strings(failed)
	for _, id := range failed {
		PrintWarning(fmt.Sprintf("%s: %s", id, res.Failed[id]))
	}

	PrintSuccess(fmt.Sprintf("Warmed %d assets in %.2fs (%d failed)", res.Warmed, time.Since(start).Seconds(), len(failed)))
	if res.Warmed == 0 && len(failed) > 0 {
		return fmt.Errorf("no asset could be fetched")
	}
	return nil
}
