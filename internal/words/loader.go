package words

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/lexis/internal/resource"
)

//go:embed assets/words_dictionary.json
var assets embed.FS

const (
	bundledAsset = "assets/words_dictionary.json"
	insertChunk  = 5000
)

// Loader imports the bundled word list into an empty index. The import is
// all-or-nothing, so a failed run leaves the index empty and the next
// Initialize tries again.
type Loader struct {
	store  IndexStore
	index  *Index
	path   string
	logger *slog.Logger
}

// NewLoader creates a Loader. An empty path selects the embedded word list.
// index may be nil; when set, its cache is invalidated after an import.
func NewLoader(store IndexStore, index *Index, path string) *Loader {
	return &Loader{store: store, index: index, path: path, logger: slog.Default()}
}

// Initialize imports the word list unless the index already has rows. It is
// safe to call on every start.
func (l *Loader) Initialize(ctx context.Context) <-chan resource.Resource[struct{}] {
	return resource.Run(ctx, func(ctx context.Context, emit resource.Emitter[struct{}]) {
		if _, err := l.Load(ctx); err != nil {
			l.logger.Error("word index bootstrap failed", "error", err)
			emit(resource.FromError[struct{}](err))
			return
		}
		emit(resource.Success(struct{}{}))
	})
}

// Load is the synchronous form of Initialize. It returns the number of rows
// inserted, which is zero when the index was already populated.
func (l *Loader) Load(ctx context.Context) (int, error) {
	populated, err := l.store.HasWords()
	if err != nil {
		return 0, resource.Wrap(resource.KindStorage, fmt.Errorf("checking word index: %w", err))
	}
	if populated {
		l.logger.Debug("word index already populated")
		return 0, nil
	}

	r, err := l.open()
	if err != nil {
		return 0, err
	}
	defer r.Close()

	chunks := make(chan []string, 1)
	var inserted int

	// The import commits only after chunks is closed, which happens only when
	// the whole list parsed. Any failure cancels gctx and rolls it back.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := parseWordKeys(gctx, r, insertChunk, chunks); err != nil {
			return err
		}
		close(chunks)
		return nil
	})
	g.Go(func() error {
		n, err := l.store.ImportWords(gctx, chunks)
		if err != nil {
			if gctx.Err() != nil {
				// Rolled back because parsing failed or ctx ended; that error wins.
				return gctx.Err()
			}
			return resource.Wrap(resource.KindStorage, fmt.Errorf("inserting words: %w", err))
		}
		inserted = n
		return nil
	})
	err = g.Wait()

	if inserted > 0 && l.index != nil {
		l.index.Invalidate()
	}
	if err != nil {
		return inserted, err
	}
	l.logger.Info("word index bootstrapped", "words", inserted)
	return inserted, nil
}

func (l *Loader) open() (io.ReadCloser, error) {
	if l.path == "" {
		f, err := assets.Open(bundledAsset)
		if err != nil {
			return nil, fmt.Errorf("opening bundled word list: %w", err)
		}
		return f, nil
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("opening word list: %w", err)
	}
	return f, nil
}

// parseWordKeys streams the keys of a top-level JSON object to out in chunks
// of size n. Values are skipped.
func parseWordKeys(ctx context.Context, r io.Reader, n int, out chan<- []string) error {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return parseErr(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return parseErr(errors.New("word list must be a JSON object"))
	}

	send := func(chunk []string) error {
		select {
		case out <- chunk:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	chunk := make([]string, 0, n)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return parseErr(err)
		}
		key, ok := tok.(string)
		if !ok {
			return parseErr(fmt.Errorf("unexpected token %v", tok))
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return parseErr(err)
		}

		chunk = append(chunk, key)
		if len(chunk) == n {
			if err := send(chunk); err != nil {
				return err
			}
			chunk = make([]string, 0, n)
		}
	}
	if _, err := dec.Token(); err != nil {
		return parseErr(err)
	}
	if len(chunk) > 0 {
		return send(chunk)
	}
	return nil
}

func parseErr(err error) error {
	return resource.Wrap(resource.KindParse, fmt.Errorf("parsing word list: %w", err))
}
