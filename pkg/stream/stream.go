/*
【ファイル概要: stream.go】
Stream は一つの SI（Stream Identifier）に属する読み書きとメッセージ
組み立てを実装します。

完成したメッセージの読み出しバッファには pion/transport の
packetio.Buffer を使う。これはメッセージ境界を保ったまま
ブロッキング read/write を提供するリングバッファで、読み手が遅い間の
バックプレッシャーは Buffer の容量制限がそのまま体現する。association
はここへ完成したメッセージを積むだけで、読者のスケジューリングには
関与しない。
*/
package stream

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/pion/transport/v2/packetio"

	"github.com/pion/ion-sctp/pkg/queue"
	"github.com/pion/ion-sctp/pkg/serial"
)

// Logger is this package's logger; defaults to discarding all output.
var Logger logr.Logger = logr.Discard()

// defaultMTU is the fragmentation size used when no association MTU
// is supplied.
const defaultMTU = 1200

// defaultReadBufferBytes bounds how many assembled-but-unread bytes a
// stream will hold before Write on the read buffer blocks, providing
// backpressure to a slow reader.
const defaultReadBufferBytes = 1 << 20

// WriteFunc enqueues freshly fragmented outbound chunks for the
// association's pending queue; Stream does not touch the association
// state directly, keeping association as the single actor that owns it.
type WriteFunc func(fragments []*queue.DataChunk) error

// Stream is one stream's read/write/reassembly state.
type Stream struct {
	mu sync.Mutex

	si          uint16
	reliability Reliability
	mtu         int
	write       WriteFunc

	nextOutSSN uint16

	ordered        map[uint16]*message // ssn -> partial message, ordered and unordered fragments alike
	readyOrdered   map[uint16]*message // ssn -> assembled message awaiting its turn
	nextInSSN      uint16
	nextInSSNValid bool

	readBuf *packetio.Buffer
	closed  bool
}

func newStream(si uint16, reliability Reliability, mtu int, write WriteFunc) *Stream {
	if mtu <= 0 {
		mtu = defaultMTU
	}
	buf := packetio.NewBuffer()
	buf.SetLimitSize(defaultReadBufferBytes)
	return &Stream{
		si:          si,
		reliability: reliability,
		mtu:         mtu,
		write:       write,
		ordered:     make(map[uint16]*message),
		readBuf:     buf,
	}
}

// StreamIdentifier returns this stream's SI.
func (s *Stream) StreamIdentifier() uint16 { return s.si }

// Reliability returns the policy this stream writes with.
func (s *Stream) Reliability() Reliability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reliability
}

// SetReliability changes the policy applied to future writes.
func (s *Stream) SetReliability(r Reliability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reliability = r
}

// Write fragments data to the configured MTU and hands the fragments
// to the association's pending queue via WriteFunc. unordered selects
// whether the message participates in this stream's SSN ordering.
func (s *Stream) Write(data []byte, ppi uint32, unordered bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStreamClosed
	}
	ssn := s.nextOutSSN
	s.nextOutSSN++
	mtu := s.mtu
	s.mu.Unlock()

	fragments := fragment(data, s.si, ssn, ppi, unordered, mtu, s.Reliability())
	return s.write(fragments)
}

func fragment(data []byte, si uint16, ssn uint16, ppi uint32, unordered bool, mtu int, rel Reliability) []*queue.DataChunk {
	maxRtx, deadline := reliabilityBudget(rel)
	if len(data) == 0 {
		return []*queue.DataChunk{{
			StreamID:  si,
			StreamSeq: ssn,
			PPI:       ppi,
			Beginning: true,
			Ending:    true,
			Unordered: unordered,
			MaxRtx:    maxRtx,
			Deadline:  deadline,
		}}
	}

	var out []*queue.DataChunk
	for off := 0; off < len(data); off += mtu {
		end := off + mtu
		if end > len(data) {
			end = len(data)
		}
		out = append(out, &queue.DataChunk{
			StreamID:  si,
			StreamSeq: ssn,
			PPI:       ppi,
			UserData:  data[off:end],
			Beginning: off == 0,
			Ending:    end == len(data),
			Unordered: unordered,
			MaxRtx:    maxRtx,
			Deadline:  deadline,
		})
	}
	return out
}

func reliabilityBudget(rel Reliability) (maxRtx int, deadline time.Time) {
	switch rel.Kind {
	case PartialReliabilityRexmit:
		return int(rel.MaxRtx), time.Time{}
	case PartialReliabilityTimed:
		return 0, time.Now().Add(rel.TTL)
	default:
		return 0, time.Time{}
	}
}

// Push delivers one inbound DATA fragment to this stream's reassembly
// state. Complete unordered messages are delivered immediately;
// ordered messages are held until every lower SSN has been delivered.
func (s *Stream) Push(c *queue.DataChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ssn := c.StreamSeq
	m, ok := s.ordered[ssn]
	if !ok {
		m = newMessage(ssn)
		s.ordered[ssn] = m
	}
	m.add(c)
	if !m.ready() {
		return
	}
	delete(s.ordered, ssn)

	if c.Unordered {
		payload, ppi := m.assemble()
		s.deliverLocked(payload, ppi)
		return
	}

	// The ordered cursor starts at SSN 0 (or wherever a Forward-TSN
	// skip or a reset left it); a later SSN arriving first is held.
	s.nextInSSNValid = true
	s.deliverOrderedLocked(ssn, m)
}

// deliverOrderedLocked buffers a completed ordered message until its
// turn, then flushes every now-contiguous successor too.
func (s *Stream) deliverOrderedLocked(ssn uint16, m *message) {
	if s.readyOrdered == nil {
		s.readyOrdered = make(map[uint16]*message)
	}
	s.readyOrdered[ssn] = m

	for {
		next, ok := s.readyOrdered[s.nextInSSN]
		if !ok {
			return
		}
		delete(s.readyOrdered, s.nextInSSN)
		payload, ppi := next.assemble()
		s.deliverLocked(payload, ppi)
		s.nextInSSN++ // uint16 wraps at 65535 -> 0, matching SSN's modular space
	}
}

// SkipOrderedTo advances the ordered-delivery cursor past ssn, as a
// Forward-TSN report tells this stream to do: any buffered
// messages this unblocks are delivered immediately.
func (s *Stream) SkipOrderedTo(ssn uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := ssn + 1
	if !s.nextInSSNValid || serial.GreaterThan16(target, s.nextInSSN) {
		s.nextInSSN = target
		s.nextInSSNValid = true
	}

	for {
		next, ok := s.readyOrdered[s.nextInSSN]
		if !ok {
			return
		}
		delete(s.readyOrdered, s.nextInSSN)
		payload, ppi := next.assemble()
		s.deliverLocked(payload, ppi)
		s.nextInSSN++
	}
}

func (s *Stream) deliverLocked(payload []byte, ppi uint32) {
	envelope := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(envelope, ppi)
	copy(envelope[4:], payload)
	if _, err := s.readBuf.Write(envelope); err != nil {
		Logger.V(1).Info("dropping message on closed stream", "si", s.si, "error", err)
	}
}

// Read blocks until a complete message is available, the stream is
// closed, or the association aborts it.
func (s *Stream) Read(max int) (payload []byte, ppi uint32, err error) {
	buf := make([]byte, max+4)
	n, err := s.readBuf.Read(buf)
	if err != nil {
		return nil, 0, err
	}
	ppi = binary.BigEndian.Uint32(buf[:4])
	payload = append([]byte(nil), buf[4:n]...)
	return payload, ppi, nil
}

// Close closes the read buffer, so a pending or later Read returns
// io.EOF once any buffered messages are drained, and makes future
// Writes fail with ErrStreamClosed.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.readBuf.Close()
}
