package session

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vsmlab/magcore/curve"
	"github.com/vsmlab/magcore/internal/hash"
	"github.com/vsmlab/magcore/units"
)

var (
	// ErrInvalidSnapshot marks data that is not a snapshot or has been
	// corrupted (bad magic, truncated body, identity mismatch).
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrUnsupportedVersion marks a snapshot written by a newer format
	// revision.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

const (
	snapshotVersion = 1
	headerSize      = 4 + 1 + 1 + 2 + 8 + 4 + 4 + 4
	maxStringLen    = math.MaxUint16
)

// snapshotMagic opens every snapshot file.
var snapshotMagic = [4]byte{'M', 'G', 'S', 'N'}

// Metric is one extracted quantity, linked to its curve by the curve's
// label hash.
type Metric struct {
	CurveID uint64
	// Name identifies the quantity ("coercivity", "remanence", ...).
	Name string
	// Method records how the value was extracted.
	Method string
	// WindowMin and WindowMax bound the |H| window the fit used; a zero
	// WindowMax means unbounded.
	WindowMin float64
	WindowMax float64
	Value     float64
	Stderr    float64
	R2        float64
	N         uint32
}

// Background is a fitted background model attached to a curve, stored so
// a reopened session reproduces the correction without re-fitting. Linear
// models fill Chi/Intercept; Langevin/Brillouin fill the paramagnet
// parameters.
type Background struct {
	CurveID uint64
	// Kind names the model: "linear", "langevin" or "brillouin".
	Kind        string
	WindowMin   float64
	WindowMax   float64
	Chi         float64
	Intercept   float64
	Msat        float64
	Mu          float64
	SpinJ       float64
	Temperature float64
	R2          float64
}

// Snapshot is a persistable analysis session: the curves, the metrics
// extracted from them and any fitted backgrounds. Encoding is
// deterministic so identical sessions produce identical bytes.
type Snapshot struct {
	CreatedAt   time.Time
	Curves      []*curve.Curve
	Metrics     []Metric
	Backgrounds []Background
}

// CurveID derives the stable identity a Metric uses to reference a curve.
func CurveID(label string) uint64 {
	return hash.ID(label)
}

// Encode serializes the snapshot with the given body compression. The
// header stays uncompressed so Decode can pick the codec.
//
// Layout: magic, version, compression, reserved, created-at (unix nanos),
// curve/metric/background counts, then the compressed body. Each curve
// carries its label, label hash, unit tags and the H/M columns as
// little-endian float64; metrics and backgrounds carry their curve hash
// and parameters.
func (s *Snapshot) Encode(comp Compression) ([]byte, error) {
	c, err := codecFor(comp)
	if err != nil {
		return nil, err
	}

	var body []byte
	for _, cv := range s.Curves {
		body, err = appendCurve(body, cv)
		if err != nil {
			return nil, err
		}
	}
	for _, m := range s.Metrics {
		body, err = appendMetric(body, m)
		if err != nil {
			return nil, err
		}
	}
	for _, bg := range s.Backgrounds {
		body, err = appendBackground(body, bg)
		if err != nil {
			return nil, err
		}
	}

	compressed, err := c.Compress(body)
	if err != nil {
		return nil, fmt.Errorf("compress snapshot body: %w", err)
	}

	out := make([]byte, 0, headerSize+len(compressed))
	out = append(out, snapshotMagic[:]...)
	out = append(out, snapshotVersion, byte(comp))
	out = binary.LittleEndian.AppendUint16(out, 0) // reserved
	out = binary.LittleEndian.AppendUint64(out, uint64(s.CreatedAt.UnixNano()))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(s.Curves)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(s.Metrics)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(s.Backgrounds)))
	out = append(out, compressed...)

	return out, nil
}

// Decode parses an encoded snapshot, verifying the magic, the version and
// every curve's label hash.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidSnapshot, len(data))
	}
	if [4]byte(data[:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if v := data[4]; v != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, v)
	}

	comp := Compression(data[5])
	c, err := codecFor(comp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, err)
	}

	createdAt := int64(binary.LittleEndian.Uint64(data[8:16]))
	curveCount := binary.LittleEndian.Uint32(data[16:20])
	metricCount := binary.LittleEndian.Uint32(data[20:24])
	backgroundCount := binary.LittleEndian.Uint32(data[24:28])

	body, err := c.Decompress(data[headerSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, err)
	}

	r := &reader{buf: body}

	snap := &Snapshot{CreatedAt: time.Unix(0, createdAt)}
	for i := uint32(0); i < curveCount; i++ {
		cv, err := readCurve(r)
		if err != nil {
			return nil, err
		}
		snap.Curves = append(snap.Curves, cv)
	}
	for i := uint32(0); i < metricCount; i++ {
		m, err := readMetric(r)
		if err != nil {
			return nil, err
		}
		snap.Metrics = append(snap.Metrics, m)
	}
	for i := uint32(0); i < backgroundCount; i++ {
		bg, err := readBackground(r)
		if err != nil {
			return nil, err
		}
		snap.Backgrounds = append(snap.Backgrounds, bg)
	}

	if r.off != len(r.buf) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidSnapshot, len(r.buf)-r.off)
	}

	return snap, nil
}

func appendCurve(buf []byte, cv *curve.Curve) ([]byte, error) {
	buf, err := appendString(buf, cv.Label)
	if err != nil {
		return nil, err
	}

	buf = binary.LittleEndian.AppendUint64(buf, hash.ID(cv.Label))
	buf = append(buf, byte(cv.FieldUnit), byte(cv.MomentUnit))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(cv.Len()))
	for _, p := range cv.Points {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.H))
	}
	for _, p := range cv.Points {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.M))
	}

	return buf, nil
}

func readCurve(r *reader) (*curve.Curve, error) {
	label := r.str()
	id := r.u64()
	fu := units.FieldUnit(r.u8())
	mu := units.MomentUnit(r.u8())
	n := r.u32()
	if r.err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, r.err)
	}

	if hash.ID(label) != id {
		return nil, fmt.Errorf("%w: label hash mismatch for %q", ErrInvalidSnapshot, label)
	}
	if fu < units.FieldAm || fu > units.FieldOe {
		return nil, fmt.Errorf("%w: field unit 0x%x", ErrInvalidSnapshot, uint8(fu))
	}
	if mu < units.MomentEmu || mu > units.MomentAPerM {
		return nil, fmt.Errorf("%w: moment unit 0x%x", ErrInvalidSnapshot, uint8(mu))
	}

	points := make([]curve.Point, n)
	for i := range points {
		points[i] = curve.Pt(r.f64(), 0)
	}
	for i := range points {
		points[i].M = r.f64()
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, r.err)
	}

	return curve.New(label, points, fu, mu), nil
}

func appendMetric(buf []byte, m Metric) ([]byte, error) {
	buf = binary.LittleEndian.AppendUint64(buf, m.CurveID)

	buf, err := appendString(buf, m.Name)
	if err != nil {
		return nil, err
	}
	buf, err = appendString(buf, m.Method)
	if err != nil {
		return nil, err
	}

	for _, v := range []float64{m.WindowMin, m.WindowMax, m.Value, m.Stderr, m.R2} {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	buf = binary.LittleEndian.AppendUint32(buf, m.N)

	return buf, nil
}

func readMetric(r *reader) (Metric, error) {
	m := Metric{
		CurveID: r.u64(),
		Name:    r.str(),
		Method:  r.str(),
	}
	m.WindowMin = r.f64()
	m.WindowMax = r.f64()
	m.Value = r.f64()
	m.Stderr = r.f64()
	m.R2 = r.f64()
	m.N = r.u32()
	if r.err != nil {
		return Metric{}, fmt.Errorf("%w: %s", ErrInvalidSnapshot, r.err)
	}

	return m, nil
}

func appendBackground(buf []byte, bg Background) ([]byte, error) {
	buf = binary.LittleEndian.AppendUint64(buf, bg.CurveID)

	buf, err := appendString(buf, bg.Kind)
	if err != nil {
		return nil, err
	}

	for _, v := range []float64{
		bg.WindowMin, bg.WindowMax,
		bg.Chi, bg.Intercept,
		bg.Msat, bg.Mu, bg.SpinJ, bg.Temperature,
		bg.R2,
	} {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}

	return buf, nil
}

func readBackground(r *reader) (Background, error) {
	bg := Background{
		CurveID: r.u64(),
		Kind:    r.str(),
	}
	bg.WindowMin = r.f64()
	bg.WindowMax = r.f64()
	bg.Chi = r.f64()
	bg.Intercept = r.f64()
	bg.Msat = r.f64()
	bg.Mu = r.f64()
	bg.SpinJ = r.f64()
	bg.Temperature = r.f64()
	bg.R2 = r.f64()
	if r.err != nil {
		return Background{}, fmt.Errorf("%w: %s", ErrInvalidSnapshot, r.err)
	}

	return bg, nil
}

func appendString(buf []byte, s string) ([]byte, error) {
	if len(s) > maxStringLen {
		return nil, fmt.Errorf("string %q... exceeds %d bytes", s[:16], maxStringLen)
	}

	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(s)))

	return append(buf, s...), nil
}

// reader is a bounds-checked cursor over the decompressed body. The first
// failed read latches err; subsequent reads return zero values.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = fmt.Errorf("truncated at offset %d", r.off)

		return nil
	}

	b := r.buf[r.off : r.off+n]
	r.off += n

	return b
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint32(b)
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint64(b)
}

func (r *reader) f64() float64 {
	return math.Float64frombits(r.u64())
}

func (r *reader) str() string {
	b := r.take(2)
	if b == nil {
		return ""
	}

	s := r.take(int(binary.LittleEndian.Uint16(b)))
	if s == nil {
		return ""
	}

	return string(s)
}
