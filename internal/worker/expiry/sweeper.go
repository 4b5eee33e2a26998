// Package expiry は貸出期限切れの自動処理ワーカーを提供する。
// 毎日指定時刻に期限切れ貸出を一括返却するスイープ処理を実行する。
package expiry

import (
	"context"
	"log/slog"
	"time"
)

// LoanExpirer は期限切れ貸出の一括処理インターフェース。
type LoanExpirer interface {
	// AutoExpire は返却期限を過ぎた未返却貸出をすべて期限切れ返却として処理する。
	AutoExpire(ctx context.Context) error
}

// Sweeper は期限切れスイープの日次スケジューリングを行う。
// sweepHourで指定した時刻（時単位）の次回到来まで待機し、
// 以降は24時間間隔で実行する。intervalを指定した場合は
// 固定間隔ティッカーに切り替わる（主にテスト・開発用）。
type Sweeper struct {
	expirer   LoanExpirer
	logger    *slog.Logger
	sweepHour int
	interval  time.Duration
}

// NewSweeper はSweeperの新しいインスタンスを生成する。
// sweepHourが0〜23の範囲外の場合はデフォルト値1（深夜1時）を使用する。
// intervalが0より大きい場合は日次スケジュールではなく固定間隔で実行する。
func NewSweeper(expirer LoanExpirer, logger *slog.Logger, sweepHour int, interval time.Duration) *Sweeper {
	if sweepHour < 0 || sweepHour > 23 {
		sweepHour = 1
	}
	return &Sweeper{
		expirer:   expirer,
		logger:    logger,
		sweepHour: sweepHour,
		interval:  interval,
	}
}

// Start はスイープスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval > 0 {
		s.runFixedInterval(ctx)
		return
	}
	s.runDaily(ctx)
}

func (s *Sweeper) runDaily(ctx context.Context) {
	s.logger.Info("期限切れスイープスケジューラを開始しました",
		slog.Int("sweep_hour", s.sweepHour),
	)

	for {
		delay := delayUntilNext(time.Now(), s.sweepHour)
		timer := time.NewTimer(delay)

		s.logger.Info("次回スイープまで待機します",
			slog.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("期限切れスイープスケジューラを停止しました")
			return
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Sweeper) runFixedInterval(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("期限切れスイープスケジューラを開始しました",
		slog.Duration("interval", s.interval),
	)

	// 起動直後に1回実行
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("期限切れスイープスケジューラを停止しました")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce は期限切れスイープを1回実行する。
// 処理中のエラーはログに記録し、スケジューラ自体は停止しない。
func (s *Sweeper) RunOnce(ctx context.Context) {
	start := time.Now()

	s.logger.Info("期限切れスイープを開始します")

	if err := s.expirer.AutoExpire(ctx); err != nil {
		s.logger.Error("期限切れスイープに失敗しました",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return
	}

	s.logger.Info("期限切れスイープが完了しました",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
}

// delayUntilNext はnowから次にhour時0分0秒を迎えるまでの待機時間を返す。
// ちょうどhour時丁度の場合は翌日の同時刻までの24時間を返す。
func delayUntilNext(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
