// Package trace records dispatch events and encodes them as CBOR.
package trace

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/defgeneric/dispatch"
)

// FormatVersion is written into every encoded Trace.
const FormatVersion = 1

// Record is one method invocation.
type Record struct {
	Seq       uint64   `cbor:"1,keyasint"`
	Generic   string   `cbor:"2,keyasint"`
	Role      string   `cbor:"3,keyasint"`
	Signature string   `cbor:"4,keyasint"`
	Depth     int      `cbor:"5,keyasint"`
	ArgTypes  []string `cbor:"6,keyasint,omitempty"`
}

// Trace is an encodable sequence of records.
type Trace struct {
	Version byte     `cbor:"1,keyasint"`
	Dropped uint64   `cbor:"2,keyasint,omitempty"` // records discarded past the limit
	Records []Record `cbor:"3,keyasint"`
}

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("trace: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a Trace to CBOR bytes.
func Marshal(t *Trace) ([]byte, error) {
	return cborEncMode.Marshal(t)
}

// Unmarshal deserializes a Trace from CBOR bytes.
func Unmarshal(data []byte) (*Trace, error) {
	var t Trace
	if err := cbor.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("trace: unmarshal: %w", err)
	}
	if t.Version != FormatVersion {
		return nil, fmt.Errorf("trace: unsupported version %d", t.Version)
	}
	return &t, nil
}

// Format writes one line per record, indented by depth.
func (t *Trace) Format(w io.Writer) error {
	for _, r := range t.Records {
		_, err := fmt.Fprintf(w, "%s%s %s(%s) [%s]\n",
			strings.Repeat("  ", r.Depth), r.Role, r.Generic, strings.Join(r.ArgTypes, ","), r.Signature)
		if err != nil {
			return err
		}
	}
	if t.Dropped > 0 {
		_, err := fmt.Fprintf(w, "... %d more\n", t.Dropped)
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Recorder
// ---------------------------------------------------------------------------

// Recorder is a dispatch.Tracer that keeps records in memory.
// It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	limit   int
	seq     uint64
	dropped uint64
	records []Record
}

// NewRecorder creates a recorder keeping at most limit records.
// A limit of zero or less keeps everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// MethodEntered implements dispatch.Tracer.
func (r *Recorder) MethodEntered(e dispatch.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	if r.limit > 0 && len(r.records) >= r.limit {
		r.dropped++
		return
	}
	r.records = append(r.records, Record{
		Seq:       r.seq,
		Generic:   e.Generic,
		Role:      e.Role.String(),
		Signature: e.Signature,
		Depth:     e.Depth,
		ArgTypes:  e.ArgTypes,
	})
}

// Len returns the number of kept records.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Snapshot returns a Trace of the records so far.
func (r *Recorder) Snapshot() *Trace {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]Record, len(r.records))
	copy(records, r.records)
	return &Trace{Version: FormatVersion, Dropped: r.dropped, Records: records}
}

// Reset discards all records.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq = 0
	r.dropped = 0
	r.records = nil
}
