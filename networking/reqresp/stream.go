package reqresp

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/golang/snappy"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"

	"github.com/ssflabs/gean/ssz"
	"github.com/ssflabs/gean/types"
)

const (
	ReadTimeout  = 10 * time.Second
	WriteTimeout = 10 * time.Second
	MaxMsgSize   = 10 * 1024 * 1024
)

// Response codes, per the gossip/reqresp wire format.
const (
	RespCodeSuccess     byte = 0x00
	RespCodeInvalidReq  byte = 0x01
	RespCodeServerError byte = 0x02
)

// StreamHandler manages request/response protocol streams.
type StreamHandler struct {
	host    host.Host
	handler Handler
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(h host.Host, handler Handler) *StreamHandler {
	return &StreamHandler{host: h, handler: handler}
}

// RegisterProtocols registers all request/response protocol handlers.
func (s *StreamHandler) RegisterProtocols() {
	s.host.SetStreamHandler(protocol.ID(StatusProtocolV1), s.handleStatusStream)
	s.host.SetStreamHandler(protocol.ID(BlocksByRootProtocolV1), s.handleBlocksByRootStream)
}

func encodeStatus(st Status) []byte {
	buf := make([]byte, 0, 80)
	buf = append(buf, st.FinalizedHash[:]...)
	buf = appendUint64(buf, uint64(st.FinalizedSlot))
	buf = append(buf, st.HeadHash[:]...)
	buf = appendUint64(buf, uint64(st.HeadSlot))
	return buf
}

func decodeStatus(data []byte) (Status, error) {
	if len(data) != 32+8+32+8 {
		return Status{}, fmt.Errorf("reqresp: status wrong length %d", len(data))
	}
	var st Status
	copy(st.FinalizedHash[:], data[0:32])
	st.FinalizedSlot = types.Slot(binary.LittleEndian.Uint64(data[32:40]))
	copy(st.HeadHash[:], data[40:72])
	st.HeadSlot = types.Slot(binary.LittleEndian.Uint64(data[72:80]))
	return st, nil
}

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func encodeBlocksByRootRequest(req BlocksByRootRequest) []byte {
	buf := make([]byte, 0, 4+32*len(req.Roots))
	buf = appendUint64(buf, uint64(len(req.Roots)))
	for _, r := range req.Roots {
		buf = append(buf, r[:]...)
	}
	return buf
}

func decodeBlocksByRootRequest(data []byte) (BlocksByRootRequest, error) {
	if len(data) < 8 {
		return BlocksByRootRequest{}, fmt.Errorf("reqresp: request too short")
	}
	n := binary.LittleEndian.Uint64(data[:8])
	rest := data[8:]
	if uint64(len(rest)) != n*32 {
		return BlocksByRootRequest{}, fmt.Errorf("reqresp: request length mismatch")
	}
	roots := make([]types.Hash, n)
	for i := range roots {
		copy(roots[i][:], rest[i*32:(i+1)*32])
	}
	return BlocksByRootRequest{Roots: roots}, nil
}

// handleStatusStream handles incoming Status requests.
func (s *StreamHandler) handleStatusStream(stream network.Stream) {
	defer stream.Close()
	_ = stream.SetReadDeadline(time.Now().Add(ReadTimeout))

	data, err := readMessage(stream)
	if err != nil {
		slog.Debug("handleStatusStream: failed to read message", "error", err)
		writeErrorResponse(stream, RespCodeInvalidReq)
		return
	}
	if _, err := decodeStatus(data); err != nil {
		slog.Debug("handleStatusStream: failed to decode", "error", err)
		writeErrorResponse(stream, RespCodeInvalidReq)
		return
	}

	ourStatus := s.handler.GetStatus()
	respData := encodeStatus(ourStatus)

	_ = stream.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := writeSuccessResponse(stream, respData); err != nil {
		slog.Debug("handleStatusStream: failed to write response", "error", err)
	}
}

// handleBlocksByRootStream handles incoming BlocksByRoot requests.
func (s *StreamHandler) handleBlocksByRootStream(stream network.Stream) {
	defer stream.Close()
	_ = stream.SetReadDeadline(time.Now().Add(ReadTimeout))

	data, err := readMessage(stream)
	if err != nil {
		writeErrorResponse(stream, RespCodeInvalidReq)
		return
	}
	req, err := decodeBlocksByRootRequest(data)
	if err != nil {
		writeErrorResponse(stream, RespCodeInvalidReq)
		return
	}

	blocks := s.handler.HandleBlocksByRoot(&req)

	_ = stream.SetWriteDeadline(time.Now().Add(WriteTimeout))
	for _, b := range blocks {
		writeSuccessResponse(stream, ssz.EncodeBlock(b))
	}
}

// SendStatus sends a Status request to a peer and returns their status.
func (s *StreamHandler) SendStatus(ctx context.Context, peerID peer.ID, status Status) (Status, error) {
	stream, err := s.host.NewStream(ctx, peerID, protocol.ID(StatusProtocolV1))
	if err != nil {
		return Status{}, fmt.Errorf("reqresp: open stream: %w", err)
	}
	defer stream.Close()

	_ = stream.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := writeMessage(stream, encodeStatus(status)); err != nil {
		return Status{}, fmt.Errorf("reqresp: write request: %w", err)
	}
	if err := stream.CloseWrite(); err != nil {
		return Status{}, fmt.Errorf("reqresp: close write: %w", err)
	}

	_ = stream.SetReadDeadline(time.Now().Add(ReadTimeout))
	code, data, err := readResponse(stream)
	if err != nil {
		return Status{}, fmt.Errorf("reqresp: read response: %w", err)
	}
	if code != RespCodeSuccess {
		return Status{}, fmt.Errorf("reqresp: peer returned error code %d", code)
	}
	return decodeStatus(data)
}

// RequestBlocksByRoot requests blocks from a peer by their roots.
func (s *StreamHandler) RequestBlocksByRoot(ctx context.Context, peerID peer.ID, roots []types.Hash) ([]types.Block, error) {
	stream, err := s.host.NewStream(ctx, peerID, protocol.ID(BlocksByRootProtocolV1))
	if err != nil {
		return nil, fmt.Errorf("reqresp: open stream: %w", err)
	}
	defer stream.Close()

	req := BlocksByRootRequest{Roots: roots}
	_ = stream.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := writeMessage(stream, encodeBlocksByRootRequest(req)); err != nil {
		return nil, fmt.Errorf("reqresp: write request: %w", err)
	}
	if err := stream.CloseWrite(); err != nil {
		return nil, fmt.Errorf("reqresp: close write: %w", err)
	}

	var blocks []types.Block
	_ = stream.SetReadDeadline(time.Now().Add(ReadTimeout))
	for {
		code, data, err := readResponse(stream)
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		if code != RespCodeSuccess {
			continue
		}
		b, err := ssz.DecodeBlock(data)
		if err != nil {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// readMessage reads a varint-prefixed, snappy-framed message from the
// stream.
func readMessage(r io.Reader) ([]byte, error) {
	buf := make([]byte, MaxMsgSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	buf = buf[:n]

	if len(buf) < 2 {
		return nil, fmt.Errorf("reqresp: message too short")
	}

	uncompressedSize, varintLen := binary.Uvarint(buf)
	if varintLen <= 0 {
		return nil, fmt.Errorf("reqresp: invalid varint")
	}
	if uncompressedSize > MaxMsgSize {
		return nil, fmt.Errorf("reqresp: message too large: %d", uncompressedSize)
	}

	decoded, err := snappy.Decode(nil, buf[varintLen:])
	if err != nil {
		return nil, fmt.Errorf("reqresp: snappy decode: %w", err)
	}
	if uint64(len(decoded)) != uncompressedSize {
		return nil, fmt.Errorf("reqresp: size mismatch: expected %d, got %d", uncompressedSize, len(decoded))
	}
	return decoded, nil
}

func writeMessage(w io.Writer, data []byte) error {
	compressed := snappy.Encode(nil, data)
	varintBuf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(varintBuf, uint64(len(data)))
	if _, err := w.Write(varintBuf[:n]); err != nil {
		return err
	}
	_, err := w.Write(compressed)
	return err
}

func readResponse(r io.Reader) (byte, []byte, error) {
	codeBuf := make([]byte, 1)
	if _, err := io.ReadFull(r, codeBuf); err != nil {
		return 0, nil, err
	}
	data, err := readMessage(r)
	return codeBuf[0], data, err
}

func writeSuccessResponse(w io.Writer, data []byte) error {
	if _, err := w.Write([]byte{RespCodeSuccess}); err != nil {
		return err
	}
	return writeMessage(w, data)
}

func writeErrorResponse(w io.Writer, code byte) error {
	_, err := w.Write([]byte{code})
	return err
}
