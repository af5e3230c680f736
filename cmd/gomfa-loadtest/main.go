// Command gomfa-loadtest measures challenge issue and verification throughput
// against a Redis backend. Without -redis-addr it runs fully self-contained on
// an embedded miniredis.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goMFA "github.com/MrEthical07/goMFA"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		logins      = flag.Int("logins", 50000, "number of login+verify round trips")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "mfc", "challenge key prefix")
	)
	flag.Parse()

	if *logins <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "logins and concurrency must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup func()
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		cleanup = mr.Close
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		cleanup = func() {}
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = client.Close() }()

	cfg := goMFA.DefaultConfig()
	cfg.Challenge.RedisPrefix = *prefix
	// Rate limiting and audit would dominate the measurement; both stay off.
	cfg.Security.EnableRateLimiting = false
	cfg.Audit.Enabled = false
	cfg.Metrics.Enabled = true

	sender := newCaptureSender()
	engine, err := goMFA.New().
		WithConfig(cfg).
		WithRedis(client).
		WithIdentityProvider(loadProvider{}).
		WithCodeSender(sender).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	sessions := make([]string, *logins)
	loginStats := runPhase(*logins, *concurrency, func(i int) error {
		result, err := engine.Login(ctx, userFor(i), "load-test-password")
		if err != nil {
			return err
		}
		sessions[i] = result.SessionToken
		return nil
	})

	verifyStats := runPhase(*logins, *concurrency, func(i int) error {
		user := userFor(i)
		code, ok := sender.take(user)
		if !ok {
			return fmt.Errorf("no code captured for %s", user)
		}
		_, err := engine.CompleteLogin(ctx, sessions[i], user, code)
		return err
	})

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("verify", verifyStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("issued=%d verified=%d tokens=%d\n",
		snap.Counters[goMFA.MetricChallengeIssued],
		snap.Counters[goMFA.MetricVerifySuccess],
		snap.Counters[goMFA.MetricTokensIssued],
	)
}

func userFor(i int) string {
	return fmt.Sprintf("user-%d@loadtest.local", i)
}

func runPhase(ops, concurrency int, op func(i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// loadProvider accepts every credential and mints synthetic tokens. Principal
// and delivery address are the same string so the sender can pair codes with
// verify calls.
type loadProvider struct{}

func (loadProvider) VerifyPassword(_ context.Context, principal, _ string) (*goMFA.CredentialResult, error) {
	return &goMFA.CredentialResult{Subject: principal, Email: principal}, nil
}

func (loadProvider) RespondToChallenge(context.Context, string, string) (*goMFA.TokenSet, error) {
	return &goMFA.TokenSet{AccessToken: "at", RefreshToken: "rt", IDToken: "it"}, nil
}

func (loadProvider) IssueTokens(_ context.Context, principal string) (*goMFA.TokenSet, error) {
	return &goMFA.TokenSet{AccessToken: "at-" + principal, RefreshToken: "rt", IDToken: "it"}, nil
}

func (loadProvider) Refresh(context.Context, string) (*goMFA.TokenSet, error) {
	return &goMFA.TokenSet{AccessToken: "at", RefreshToken: "rt", IDToken: "it"}, nil
}

func (loadProvider) SignOut(context.Context, string) error { return nil }

type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func newCaptureSender() *captureSender {
	return &captureSender{codes: make(map[string]string)}
}

func (s *captureSender) SendCode(_ context.Context, recipient, code string) error {
	s.mu.Lock()
	s.codes[recipient] = code
	s.mu.Unlock()
	return nil
}

func (s *captureSender) take(recipient string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[recipient]
	delete(s.codes, recipient)
	return code, ok
}
