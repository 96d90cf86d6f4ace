package receiver

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Reader feeds a byte stream through a Parser into a Store.
type Reader struct {
	r      io.Reader
	parser Parser
	store  *Store

	// Follow keeps reading after io.EOF, as serial ports report a read
	// timeout that way.
	Follow bool
	// OnDrop, if set, is called with an error wrapping ErrChecksum for
	// every frame the parser rejected.
	OnDrop func(error)
}

// NewReader returns a Reader that stops at the end of r.
func NewReader(r io.Reader, parser Parser, store *Store) *Reader {
	return &Reader{r: r, parser: parser, store: store}
}

// Run reads until ctx is done, r ends (unless Follow) or a read fails.
// A read failure after ctx is done, such as closing the port to unblock
// Read, ends Run without error.
func (rd *Reader) Run(ctx context.Context) error {
	var buf [64]byte
	_, dropped := rd.parser.Stats()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		n, err := rd.r.Read(buf[:])
		for _, b := range buf[:n] {
			if rd.parser.Feed(b) {
				rd.store.Update(rd.parser.Channels())
			}
		}

		if _, errs := rd.parser.Stats(); errs != dropped {
			if rd.OnDrop != nil {
				rd.OnDrop(fmt.Errorf("%w: %d frames", ErrChecksum, errs-dropped))
			}
			dropped = errs
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF) && rd.Follow:
		case errors.Is(err, io.EOF), ctx.Err() != nil:
			return nil
		default:
			return fmt.Errorf("receiver: read: %w", err)
		}
	}
}
