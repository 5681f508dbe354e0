// Package vectorfile reads and writes the binary vector artifact of a flat index.
//
// Layout, all little-endian:
//
//	magic     [8]byte  "RAGKVEC1"
//	version   uint32   1
//	metric    uint32   0 = l2, 1 = cosine
//	dimension uint32
//	count     uint64
//	data      [count*dimension]float32, row-major
//	checksum  uint32   CRC-32 (IEEE) of every preceding byte
package vectorfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// Format constants.
const (
	Magic      = "RAGKVEC1"
	Version    = 1
	headerSize = 8 + 4 + 4 + 4 + 8
	footerSize = 4
)

// Decoding errors.
var (
	ErrBadMagic           = errors.New("bad magic")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrUnknownMetric      = errors.New("unknown metric")
	ErrChecksum           = errors.New("checksum mismatch")
	ErrTruncated          = errors.New("truncated file")
	ErrTrailingData       = errors.New("trailing data after checksum")
	ErrBadShape           = errors.New("bad shape")
)

// Header describes the stored matrix.
type Header struct {
	Metric     domain.DistanceMetric
	Dimensions int
	Count      int
}

// dataSize returns the byte length of the float payload.
func (h Header) dataSize() int64 {
	return int64(h.Count) * int64(h.Dimensions) * 4
}

func encodeMetric(m domain.DistanceMetric) (uint32, error) {
	switch m {
	case domain.MetricL2:
		return 0, nil
	case domain.MetricCosine:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
	}
}

func decodeMetric(v uint32) (domain.DistanceMetric, error) {
	switch v {
	case 0:
		return domain.MetricL2, nil
	case 1:
		return domain.MetricCosine, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownMetric, v)
	}
}

// Encode writes vectors in the artifact format. Every vector must have dims elements.
func Encode(w io.Writer, metric domain.DistanceMetric, dims int, vectors [][]float32) error {
	m, err := encodeMetric(metric)
	if err != nil {
		return err
	}
	if dims <= 0 {
		return fmt.Errorf("%w: dimension %d", ErrBadShape, dims)
	}

	crc := crc32.NewIEEE()
	bw := bufio.NewWriter(io.MultiWriter(w, crc))

	header := make([]byte, headerSize)
	copy(header, Magic)
	binary.LittleEndian.PutUint32(header[8:], Version)
	binary.LittleEndian.PutUint32(header[12:], m)
	binary.LittleEndian.PutUint32(header[16:], uint32(dims))
	binary.LittleEndian.PutUint64(header[20:], uint64(len(vectors)))
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	buf := make([]byte, 4*dims)
	for i, vec := range vectors {
		if len(vec) != dims {
			return fmt.Errorf("%w: vector %d has %d elements, want %d", ErrBadShape, i, len(vec), dims)
		}
		for j, v := range vec {
			binary.LittleEndian.PutUint32(buf[4*j:], math.Float32bits(v))
		}
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write vector %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	var sum [footerSize]byte
	binary.LittleEndian.PutUint32(sum[:], crc.Sum32())
	if _, err := w.Write(sum[:]); err != nil {
		return fmt.Errorf("write checksum: %w", err)
	}
	return nil
}

// Decode reads an artifact and returns its header and a flat row-major matrix.
func Decode(r io.Reader) (Header, []float32, error) {
	crc := crc32.NewIEEE()
	tr := io.TeeReader(r, crc)

	h, err := readHeader(tr)
	if err != nil {
		return Header{}, nil, err
	}

	data, err := readData(tr, h)
	if err != nil {
		return Header{}, nil, err
	}

	if err := verifyChecksum(r, crc); err != nil {
		return Header{}, nil, err
	}
	return h, data, nil
}

func readHeader(r io.Reader) (Header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("%w: header: %w", ErrTruncated, err)
	}
	if string(buf[:8]) != Magic {
		return Header{}, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint32(buf[8:]); v != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	metric, err := decodeMetric(binary.LittleEndian.Uint32(buf[12:]))
	if err != nil {
		return Header{}, err
	}
	dims := binary.LittleEndian.Uint32(buf[16:])
	count := binary.LittleEndian.Uint64(buf[20:])
	if dims == 0 || dims > math.MaxInt32 || count > math.MaxInt32 {
		return Header{}, fmt.Errorf("%w: dimension %d, count %d", ErrBadShape, dims, count)
	}
	return Header{Metric: metric, Dimensions: int(dims), Count: int(count)}, nil
}

func readData(r io.Reader, h Header) ([]float32, error) {
	data := make([]float32, 0, min(h.Count*h.Dimensions, 1<<20))
	buf := make([]byte, 4*h.Dimensions)
	br := bufio.NewReader(io.LimitReader(r, h.dataSize()))
	for i := 0; i < h.Count; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: vector %d: %w", ErrTruncated, i, err)
		}
		for j := 0; j < h.Dimensions; j++ {
			data = append(data, math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:])))
		}
	}
	return data, nil
}

func verifyChecksum(r io.Reader, crc hash.Hash32) error {
	want := crc.Sum32()
	var sum [footerSize]byte
	if _, err := io.ReadFull(r, sum[:]); err != nil {
		return fmt.Errorf("%w: checksum: %w", ErrTruncated, err)
	}
	if got := binary.LittleEndian.Uint32(sum[:]); got != want {
		return fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksum, got, want)
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		return ErrTrailingData
	}
	return nil
}

// WriteFile atomically writes the artifact to path through a temp file and rename.
func WriteFile(path string, metric domain.DistanceMetric, dims int, vectors [][]float32) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, metric, dims, vectors); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadFile reads the artifact at path, checking the file size against the header first.
func ReadFile(path string) (Header, []float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Header{}, nil, err
	}
	if st.Size() < headerSize+footerSize {
		return Header{}, nil, fmt.Errorf("%w: %d bytes", ErrTruncated, st.Size())
	}

	crc := crc32.NewIEEE()
	tr := io.TeeReader(f, crc)
	h, err := readHeader(tr)
	if err != nil {
		return Header{}, nil, err
	}
	if want := headerSize + h.dataSize() + footerSize; st.Size() != want {
		if st.Size() < want {
			return Header{}, nil, fmt.Errorf("%w: %d bytes, header implies %d", ErrTruncated, st.Size(), want)
		}
		return Header{}, nil, fmt.Errorf("%w: %d bytes, header implies %d", ErrTrailingData, st.Size(), want)
	}

	data, err := readData(tr, h)
	if err != nil {
		return Header{}, nil, err
	}
	if err := verifyChecksum(f, crc); err != nil {
		return Header{}, nil, err
	}
	return h, data, nil
}
