// Package replay reads recorded games: a JSON array whose first element is
// the Init record, optionally gzip-compressed.
package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/observability/log"
	"github.com/zeusync/tankclient/internal/core/observability/metrics"
	"github.com/zeusync/tankclient/internal/core/timeline"
)

var (
	ErrMissingInit = errors.New("replay does not start with an Init record")
	ErrNotArray    = errors.New("replay is not a JSON array")
)

// Loader decodes replay files. The zero value works but logs nothing.
type Loader struct {
	Logger  log.Log
	Metrics metrics.Recorder
}

// Open reads the replay at path.
func (l Loader) Open(path string) (events.Init, *timeline.Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return events.Init{}, nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	boot, tl, err := l.Read(f)
	if err != nil {
		return events.Init{}, nil, fmt.Errorf("read replay %s: %w", path, err)
	}
	return boot, tl, nil
}

// Read decodes a replay from r, gunzipping it first when it starts with
// the gzip magic bytes. Events of unknown kinds are dropped.
func (l Loader) Read(r io.Reader) (events.Init, *timeline.Replay, error) {
	logger := l.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	rec := l.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}

	src, err := decompress(r)
	if err != nil {
		return events.Init{}, nil, err
	}

	dec := json.NewDecoder(src)
	tok, err := dec.Token()
	if err != nil {
		return events.Init{}, nil, fmt.Errorf("%w: %w", ErrNotArray, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return events.Init{}, nil, ErrNotArray
	}

	if !dec.More() {
		return events.Init{}, nil, ErrMissingInit
	}
	var first json.RawMessage
	if err := dec.Decode(&first); err != nil {
		return events.Init{}, nil, fmt.Errorf("decode element 0: %w", err)
	}
	boot, err := events.DecodeInit(first)
	if err != nil {
		return events.Init{}, nil, fmt.Errorf("%w: %w", ErrMissingInit, err)
	}

	var (
		evs     []events.Event
		ignored int
	)
	for i := 1; dec.More(); i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return events.Init{}, nil, fmt.Errorf("decode element %d: %w", i, err)
		}
		ev, err := events.Decode(raw)
		if err != nil {
			var unknown *events.UnknownEventKindError
			if errors.As(err, &unknown) {
				logger.Debug("Ignoring event", log.String("type", unknown.Type), log.Int("index", i))
				rec.EventIgnored(unknown.Type)
				ignored++
				continue
			}
			return events.Init{}, nil, fmt.Errorf("element %d: %w", i, err)
		}
		evs = append(evs, ev)
	}
	if _, err := dec.Token(); err != nil {
		return events.Init{}, nil, fmt.Errorf("%w: %w", ErrNotArray, err)
	}

	tl := timeline.NewReplay(evs)
	logger.Info("Replay loaded",
		log.Int("events", len(evs)),
		log.Int("ignored", ignored),
		log.Int64("duration_ms", tl.MaxTime()),
		log.String("pricing_rule", boot.PricingRule))
	return boot, tl, nil
}

var gzipMagic = []byte{0x1f, 0x8b}

func decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("peek replay header: %w", err)
	}
	if len(head) < len(gzipMagic) || head[0] != gzipMagic[0] || head[1] != gzipMagic[1] {
		return br, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("open gzip replay: %w", err)
	}
	return zr, nil
}
