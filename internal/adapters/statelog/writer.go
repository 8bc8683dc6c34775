package statelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

// Title heads every state log
const Title = "Handicraft Shop - Description of the internal state"

// Stdout is the file name that sends the log to standard output
const Stdout = "-"

// ErrOverwriteDeclined is returned by Open when the user keeps an existing log
var ErrOverwriteDeclined = errors.New("state log exists and overwrite was declined")

// ConfirmFunc asks whether an existing file may be replaced
type ConfirmFunc func(path string) (bool, error)

// Writer appends one fixed-width line per snapshot after a two-line column
// header. It is a handicraft.StateObserver; every line is flushed before
// Record returns so the file always matches the last released state.
type Writer struct {
	mu        sync.Mutex
	out       *bufio.Writer
	closer    io.Closer
	customers int
	craftsmen int
	lines     int
}

// NewWriter writes the log for a run with the given number of agents to w.
// If w is also an io.Closer, Close closes it.
func NewWriter(w io.Writer, customers, craftsmen int) *Writer {
	sw := &Writer{
		out:       bufio.NewWriter(w),
		customers: customers,
		craftsmen: craftsmen,
	}
	if c, ok := w.(io.Closer); ok {
		sw.closer = c
	}
	return sw
}

// Open creates the state log at path. An existing file is only replaced
// when force is set or confirm agrees.
func Open(path string, force bool, confirm ConfirmFunc, customers, craftsmen int) (*Writer, error) {
	if path == Stdout {
		return NewWriter(nopCloser{os.Stdout}, customers, craftsmen), nil
	}

	if _, err := os.Stat(path); err == nil && !force {
		if confirm == nil {
			return nil, fmt.Errorf("%s: %w", path, ErrOverwriteDeclined)
		}
		ok, err := confirm(path)
		if err != nil {
			return nil, fmt.Errorf("failed to confirm overwrite of %s: %w", path, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, ErrOverwriteDeclined)
		}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat state log: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create state log: %w", err)
	}
	return NewWriter(f, customers, craftsmen), nil
}

// WriteHeader writes the title, a blank line and the column descriptions
func (w *Writer) WriteHeader() error {
	var b strings.Builder

	fmt.Fprintf(&b, "%21s%s\n\n", "", Title)

	b.WriteString("ENTREPRE ")
	for i := 0; i < w.customers; i++ {
		fmt.Fprintf(&b, " CUST_%d ", i)
	}
	b.WriteString(" ")
	for i := 0; i < w.craftsmen; i++ {
		fmt.Fprintf(&b, " CRAFT_%d", i)
	}
	fmt.Fprintf(&b, "%10sSHOP%8s", "", "")
	fmt.Fprintf(&b, "%9sWORKSHOP\n", "")

	b.WriteString("  Stat   ")
	for i := 0; i < w.customers; i++ {
		b.WriteString("Stat BP ")
	}
	b.WriteString("  ")
	for i := 0; i < w.craftsmen; i++ {
		b.WriteString("Stat PP ")
	}
	b.WriteString(" Stat NCI NPI PCR PMR  ")
	b.WriteString("APMI NPI NSPM TAPM TNP\n")

	return w.write(b.String())
}

// Record appends the snapshot as one line
func (w *Writer) Record(s handicraft.Snapshot) error {
	if err := w.write(FormatLine(s)); err != nil {
		return err
	}
	w.mu.Lock()
	w.lines++
	w.mu.Unlock()
	return nil
}

// Lines is the number of state lines written so far
func (w *Writer) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

// Close flushes and releases the underlying file
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("failed to flush state log: %w", err)
	}
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

func (w *Writer) write(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.WriteString(s); err != nil {
		return fmt.Errorf("failed to write state log: %w", err)
	}
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("failed to flush state log: %w", err)
	}
	return nil
}

// FormatLine renders a snapshot in the column layout of the header
func FormatLine(s handicraft.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  %s   ", s.Entrepreneur.Tag())
	for _, c := range s.Customers {
		fmt.Fprintf(&b, "%s %2d ", c.State.Tag(), c.PiecesBought)
	}
	b.WriteString("  ")
	for _, c := range s.Craftsmen {
		fmt.Fprintf(&b, "%s %2d ", c.State.Tag(), c.PiecesProduced)
	}
	b.WriteString(" ")

	fmt.Fprintf(&b, "%s ", s.Shop.Status.Tag())
	fmt.Fprintf(&b, "%3d %3d ", s.Shop.CustomersInside, s.Shop.ProductsOnDisplay)
	fmt.Fprintf(&b, " %c  ", flag(s.Shop.BatchReadyFlag))
	fmt.Fprintf(&b, " %c   ", flag(s.Shop.MaterialsRequestFlag))

	ws := s.Workshop
	fmt.Fprintf(&b, "%3d  %3d %3d  %3d  %3d\n", ws.MaterialsOnHand, ws.ProductsInStoreroom,
		ws.DeliveriesMade, ws.MaterialsDeliveredTotal, ws.PiecesProducedTotal)
	return b.String()
}

func flag(v bool) byte {
	if v {
		return 'T'
	}
	return 'F'
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
