package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/redis/rueidis"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/entrain/internal/config"
	"github.com/tensorplex-labs/entrain/internal/coupling"
	"github.com/tensorplex-labs/entrain/internal/traces"
)

// appendToCurrentScript reads the round counter and pushes onto that round's
// list in one step, so a concurrent INCR cannot close the round in between.
// KEYS[1] is the round key; ARGV is prefix, ttl seconds, then the traces.
const appendToCurrentScript = `
local round = tonumber(redis.call('GET', KEYS[1]) or '0')
if #ARGV > 2 then
  local key = ARGV[1] .. ':traces:' .. round
  for i = 3, #ARGV, 1000 do
    redis.call('RPUSH', key, unpack(ARGV, i, math.min(i + 999, #ARGV)))
  end
  local ttl = tonumber(ARGV[2])
  if ttl > 0 then
    redis.call('EXPIRE', key, ttl)
  end
end
return round
`

var appendToCurrent = rueidis.NewLuaScript(appendToCurrentScript)

// Redis stores each round as a list of JSON traces and a hash of scores.
type Redis struct {
	client rueidis.Client
	keys   Keys
	ttl    time.Duration
}

func NewRedis(cfg *config.RedisEnvConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis env configuration cannot be nil")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.Address()},
		Password:    cfg.RedisPassword,
		SelectDB:    cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Address(), err)
	}

	log.Info().
		Str("address", cfg.Address()).
		Str("prefix", cfg.KeyPrefix).
		Dur("round_ttl", cfg.RoundTTL).
		Msg("redis round store connected")

	return &Redis{
		client: client,
		keys:   Keys{Prefix: cfg.KeyPrefix},
		ttl:    cfg.RoundTTL,
	}, nil
}

func (r *Redis) Close() {
	r.client.Close()
}

func (r *Redis) CurrentRound(ctx context.Context) (int64, error) {
	resp := r.client.Do(ctx, r.client.B().Get().Key(r.keys.Round()).Build())
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get current round: %w", err)
	}
	round, err := resp.AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse current round: %w", err)
	}
	return round, nil
}

func (r *Redis) AdvanceRound(ctx context.Context) (int64, error) {
	round, err := r.client.Do(ctx, r.client.B().Incr().Key(r.keys.Round()).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("advance round: %w", err)
	}
	log.Debug().Int64("round", round).Msg("advanced round")
	return round, nil
}

func (r *Redis) AppendTraces(ctx context.Context, round int64, batch []coupling.Trace) error {
	if len(batch) == 0 {
		return nil
	}

	elements, err := encodeTraces(batch)
	if err != nil {
		return err
	}

	key := r.keys.Traces(round)
	cmds := make(rueidis.Commands, 0, 2)
	cmds = append(cmds, r.client.B().Rpush().Key(key).Element(elements...).Build())
	if r.ttl > 0 {
		cmds = append(cmds, r.client.B().Expire().Key(key).Seconds(int64(r.ttl.Seconds())).Build())
	}
	for _, resp := range r.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("append traces to round %d: %w", round, err)
		}
	}
	return nil
}

func (r *Redis) AppendToCurrent(ctx context.Context, batch []coupling.Trace) (int64, error) {
	elements, err := encodeTraces(batch)
	if err != nil {
		return 0, err
	}

	args := make([]string, 0, len(elements)+2)
	args = append(args, r.keys.Prefix, strconv.FormatInt(int64(r.ttl.Seconds()), 10))
	args = append(args, elements...)

	round, err := appendToCurrent.Exec(ctx, r.client, []string{r.keys.Round()}, args).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("append traces to current round: %w", err)
	}
	return round, nil
}

func encodeTraces(batch []coupling.Trace) ([]string, error) {
	elements := make([]string, 0, len(batch))
	for _, tr := range batch {
		data, err := traces.EncodeOne(tr)
		if err != nil {
			return nil, err
		}
		elements = append(elements, string(data))
	}
	return elements, nil
}

func (r *Redis) LoadTraces(ctx context.Context, round int64) ([]coupling.Trace, error) {
	resp := r.client.Do(ctx, r.client.B().Lrange().Key(r.keys.Traces(round)).Start(0).Stop(-1).Build())
	vals, err := resp.AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return []coupling.Trace{}, nil
		}
		return nil, fmt.Errorf("load traces of round %d: %w", round, err)
	}

	out := make([]coupling.Trace, 0, len(vals))
	for i, v := range vals {
		tr, ok, err := traces.DecodeOne([]byte(v))
		if err != nil || !ok {
			log.Warn().Err(err).Int64("round", round).Int("index", i).Msg("skipping unreadable trace")
			continue
		}
		out = append(out, tr)
	}
	return out, nil
}

func (r *Redis) SaveCoupling(ctx context.Context, round int64, scores coupling.CouplingMap) error {
	if len(scores) == 0 {
		return nil
	}

	key := r.keys.Coupling(round)
	fv := r.client.B().Hset().Key(key).FieldValue()
	for _, id := range slices.Sorted(maps.Keys(scores)) {
		fv = fv.FieldValue(id, strconv.FormatFloat(scores[id], 'g', -1, 64))
	}

	cmds := make(rueidis.Commands, 0, 2)
	cmds = append(cmds, fv.Build())
	if r.ttl > 0 {
		cmds = append(cmds, r.client.B().Expire().Key(key).Seconds(int64(r.ttl.Seconds())).Build())
	}
	for _, resp := range r.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("save coupling of round %d: %w", round, err)
		}
	}
	return nil
}

func (r *Redis) LoadCoupling(ctx context.Context, round int64) (coupling.CouplingMap, error) {
	vals, err := r.client.Do(ctx, r.client.B().Hgetall().Key(r.keys.Coupling(round)).Build()).AsStrMap()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return coupling.CouplingMap{}, nil
		}
		return nil, fmt.Errorf("load coupling of round %d: %w", round, err)
	}
	return parseScores(round, vals), nil
}

func parseScores(round int64, vals map[string]string) coupling.CouplingMap {
	scores := make(coupling.CouplingMap, len(vals))
	for id, v := range vals {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Warn().Err(err).Int64("round", round).Str("agent", id).Msg("skipping unreadable score")
			continue
		}
		scores[id] = score
	}
	return scores
}
