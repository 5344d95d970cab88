package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/alitto/pond/v2"

	"github.com/ironsheep/piccy-engine/internal/config"
	"github.com/ironsheep/piccy-engine/internal/imaging"
	"github.com/ironsheep/piccy-engine/internal/logger"
)

// ServerName is reported to clients in the initialize handshake.
const ServerName = "piccy"

// minLineBuffer is the smallest request line limit.
const minLineBuffer = 1024 * 1024

// Server handles MCP protocol communication
type Server struct {
	cfg     config.Config
	log     logger.Logger
	version string

	// mu serializes writes to the response encoder; requests are handled
	// concurrently on the worker pool.
	mu  sync.Mutex
	enc *json.Encoder

	// maxLine is the longest request line accepted, newline excluded.
	maxLine int
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(cfg config.Config, log logger.Logger, version string) *Server {
	return &Server{
		cfg:     cfg,
		log:     log.WithComponent("server"),
		version: version,
		maxLine: maxLineBytes(cfg.MaxInputBytes),
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from in and writes responses to
// out. Requests are handled on a pool of cfg.Workers goroutines, so responses
// may be written in a different order than the requests arrived. Serve
// returns once in is exhausted and every accepted request has been answered.
func (s *Server) Serve(in io.Reader, out io.Writer) error {
	s.log.Info("piccy %s starting (workers=%d)", s.version, s.cfg.Workers)
	defer s.log.Info("Server stopped")

	s.enc = json.NewEncoder(out)

	pool := pond.NewPool(s.cfg.Workers)
	defer pool.StopAndWait()

	// Requests carry base64 images, so lines can be as large as the input limit allows.
	lines := &lineReader{r: bufio.NewReaderSize(in, 64*1024), limit: s.maxLine}

	for {
		line, err := lines.next()
		if errors.Is(err, errLineTooLong) {
			s.log.Warn("Request exceeds %d bytes, skipped", s.maxLine)
			s.write(s.errorResponse(nil, codeInvalidRequest, "Request too large", ErrorData{
				Kind:   imaging.KindTooLarge,
				Detail: fmt.Sprintf("request line exceeds %d bytes", s.maxLine),
			}))
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			s.log.Error("Read error: %v", err)
			return fmt.Errorf("read error: %w", err)
		}
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("Failed to parse request: %v", err)
			continue
		}

		pool.Submit(func() {
			if resp := s.handleRequest(&req); resp != nil {
				s.write(resp)
			}
		})
	}
}

// errLineTooLong reports a request line longer than the reader's limit.
var errLineTooLong = errors.New("request line too long")

// lineReader splits its input into lines of at most limit bytes.
type lineReader struct {
	r     *bufio.Reader
	limit int
}

// next returns the next line without its line ending. A line longer than
// limit is consumed through its newline and reported as errLineTooLong, so
// the following line is read normally. At the end of input next returns io.EOF.
func (lr *lineReader) next() ([]byte, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := lr.r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > lr.limit+1 {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && (tooLong || len(line) > 0) {
			err = nil
		}
		if err != nil {
			return nil, err
		}
		break
	}
	if tooLong {
		return nil, errLineTooLong
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

// write encodes a single response line.
func (s *Server) write(resp *MCPResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(resp); err != nil {
		s.log.Error("Failed to encode response: %v", err)
	}
}

// maxLineBytes sizes the request line limit for a base64 payload of maxInput bytes plus
// the JSON envelope.
func maxLineBytes(maxInput int64) int {
	const envelope = 64 * 1024
	if maxInput <= 0 {
		return 1 << 30
	}
	n := maxInput/3*4 + 4 + envelope
	if n < minLineBuffer {
		return minLineBuffer
	}
	if n > 1<<30 {
		return 1 << 30
	}
	return int(n)
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.log.Debug("Handling %s", req.Method)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": s.version,
			},
		},
	}
}
