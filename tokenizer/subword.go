package tokenizer

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google-gemini/genai-go"
)

// cacheDirName is the subdirectory under the OS temp dir the on-disk
// tokenizer model cache lives in:
// <temp>/vertexai_tokenizer_model/<sha256(url)>.
const cacheDirName = "vertexai_tokenizer_model"

// tokenizerConfig pins a subword model's download URL and expected
// SHA-256.
type tokenizerConfig struct {
	modelURL  string
	modelHash string
}

var tokenizerConfigs = map[string]tokenizerConfig{
	"gemma2": {
		modelURL:  "https://raw.githubusercontent.com/google/gemma_pytorch/33b652c465537c6158f9a472ea5700e5e770ad3f/tokenizer/tokenizer.model",
		modelHash: "61a7b147390c64585d6c3543dd6fc636906c9af3865a5548f27f31aee1d4c8e2",
	},
	"gemma3": {
		modelURL:  "https://raw.githubusercontent.com/google/gemma_pytorch/014acb7ac4563a5f77c76d7ff98f31b568c16508/tokenizer/gemma3_cleaned_262144_v2.spiece.model",
		modelHash: "1299c11d7cf632ef3b4e11937501358ada021bbdf7c47638d13c0ee982f2e79c",
	},
}

// geminiModelsToTokenizerNames and geminiStableModelsToTokenizerNames
// map a Gemini model identifier to its tokenizer family.
var geminiModelsToTokenizerNames = map[string]string{
	"gemini-1.0-pro":        "gemma2",
	"gemini-1.5-pro":        "gemma2",
	"gemini-1.5-flash":      "gemma2",
	"gemini-2.5-pro":        "gemma3",
	"gemini-2.5-flash":      "gemma3",
	"gemini-2.5-flash-lite": "gemma3",
	"gemini-2.0-flash":      "gemma3",
	"gemini-2.0-flash-lite": "gemma3",
}

var geminiStableModelsToTokenizerNames = map[string]string{
	"gemini-1.0-pro-001":                              "gemma2",
	"gemini-1.0-pro-002":                              "gemma2",
	"gemini-1.5-pro-001":                              "gemma2",
	"gemini-1.5-pro-002":                              "gemma2",
	"gemini-1.5-flash-001":                             "gemma2",
	"gemini-1.5-flash-002":                             "gemma2",
	"gemini-2.5-pro-preview-06-05":                     "gemma3",
	"gemini-2.5-pro-preview-05-06":                     "gemma3",
	"gemini-2.5-pro-exp-03-25":                         "gemma3",
	"gemini-live-2.5-flash":                            "gemma3",
	"gemini-2.5-flash-native-audio-preview-12-2025":    "gemma3",
	"gemini-2.5-flash-native-audio-preview-09-2025":    "gemma3",
	"gemini-2.5-flash-preview-05-20":                   "gemma3",
	"gemini-2.5-flash-preview-04-17":                   "gemma3",
	"gemini-2.5-flash-lite-preview-06-17":               "gemma3",
	"gemini-2.0-flash-001":                             "gemma3",
	"gemini-2.0-flash-lite-001":                        "gemma3",
	"gemini-3-pro-preview":                             "gemma3",
}

// getTokenizerName resolves a Gemini model id to a tokenizer family name,
// failing with the set of supported models when unknown.
func getTokenizerName(modelName string) (string, error) {
	if name, ok := geminiModelsToTokenizerNames[modelName]; ok {
		return name, nil
	}
	if name, ok := geminiStableModelsToTokenizerNames[modelName]; ok {
		return name, nil
	}
	supported := make([]string, 0, len(geminiModelsToTokenizerNames)+len(geminiStableModelsToTokenizerNames))
	for name := range geminiModelsToTokenizerNames {
		supported = append(supported, name)
	}
	for name := range geminiStableModelsToTokenizerNames {
		supported = append(supported, name)
	}
	return "", genai.NewInvalidConfigError(fmt.Sprintf("model %q is not supported by the local tokenizer; supported: %s", modelName, strings.Join(supported, ", ")))
}

// Subword is the SentencePiece-compatible subword estimator: it maps
// token ids to raw bytes, normalizing the SentencePiece meta-space
// character (U+2581) to an ASCII space, and encodes text by greedy
// longest-prefix matching over the resulting vocabulary.
type Subword struct {
	vocab       []string // index == token id
	tokenBytes  map[int64][]byte
	maxPieceLen int
}

var _ Estimator = (*Subword)(nil)

// NewSubwordFromModelBytes parses a raw SentencePiece model file (the
// on-disk .model format: a repeated "pieces" field, each piece's raw text
// at sub-field 1) into a Subword estimator.
func NewSubwordFromModelBytes(modelBytes []byte) (*Subword, error) {
	pieces, err := parseSentencePiecePieces(modelBytes)
	if err != nil {
		return nil, err
	}
	s := &Subword{
		vocab:      pieces,
		tokenBytes: make(map[int64][]byte, len(pieces)),
	}
	for id, piece := range pieces {
		normalized := normalizeTokenBytes([]byte(piece))
		s.tokenBytes[int64(id)] = normalized
		if l := len(normalized); l > s.maxPieceLen {
			s.maxPieceLen = l
		}
	}
	return s, nil
}

// LoadSubwordForModel resolves modelName to a tokenizer family, loads
// (from cache, or downloads and verifies) its SentencePiece model file,
// and returns a ready Subword estimator.
func LoadSubwordForModel(modelName string) (*Subword, error) {
	family, err := getTokenizerName(modelName)
	if err != nil {
		return nil, err
	}
	cfg, ok := tokenizerConfigs[family]
	if !ok {
		return nil, genai.NewInvalidConfigError(fmt.Sprintf("tokenizer %q is not supported", family))
	}
	modelBytes, err := loadModelBytes(cfg.modelURL, cfg.modelHash)
	if err != nil {
		return nil, err
	}
	return NewSubwordFromModelBytes(modelBytes)
}

// normalizeTokenBytes replaces every SentencePiece meta-space character
// (U+2581, "▁") with an ASCII space. Bytes that aren't valid UTF-8 are
// kept as-is.
func normalizeTokenBytes(b []byte) []byte {
	if !isValidUTF8(b) {
		return b
	}
	return []byte(strings.ReplaceAll(string(b), "▁", " "))
}

func isValidUTF8(b []byte) bool {
	return len(b) == 0 || strings.ToValidUTF8(string(b), "�") == string(b)
}

// EstimateTokens implements Estimator by summing len(encode(text)) for
// every text Part, ignoring non-text parts.
func (s *Subword) EstimateTokens(contents []genai.Content) int {
	var total int
	for _, content := range contents {
		for _, part := range content.Parts {
			if part.Text == nil {
				continue
			}
			total += len(s.encode(part.Text.Text))
		}
	}
	return total
}

// TokensInfo is one Part's worth of token alignment data.
type TokensInfo struct {
	Role     string
	TokenIDs []int64
	Tokens   [][]byte // raw vocabulary piece bytes; TokenBytesBase64 gives the wire form
}

// ComputeTokensResponse carries one TokensInfo entry per Part whose text
// produced at least one token.
type ComputeTokensResponse struct {
	TokensInfo []TokensInfo
}

// ComputeTokens walks every Content, emitting one TokensInfo entry per
// Part whose text(s) produced at least one token, failing with an
// InvalidConfig error for inline/file-data parts.
func (s *Subword) ComputeTokens(contents []genai.Content) (*ComputeTokensResponse, error) {
	var out ComputeTokensResponse
	for _, content := range contents {
		role := string(content.Role)
		for _, part := range content.Parts {
			texts, err := collectPartTexts(part)
			if err != nil {
				return nil, err
			}
			var tokenIDs []int64
			var tokens [][]byte
			for _, text := range texts {
				if text == "" {
					continue
				}
				for _, id := range s.encode(text) {
					b, ok := s.tokenBytes[id]
					if !ok {
						return nil, genai.NewParseError(fmt.Sprintf("tokenizer token id %d not found in vocabulary", id))
					}
					tokenIDs = append(tokenIDs, id)
					tokens = append(tokens, b)
				}
			}
			if len(tokenIDs) == 0 {
				continue
			}
			out.TokensInfo = append(out.TokensInfo, TokensInfo{Role: role, TokenIDs: tokenIDs, Tokens: tokens})
		}
	}
	return &out, nil
}

// collectPartTexts extracts the text-bearing leaves of a Part the
// subword tokenizer can encode, rejecting binary parts.
func collectPartTexts(part genai.Part) ([]string, error) {
	switch {
	case part.Text != nil:
		if part.Text.Text == "" {
			return nil, nil
		}
		return []string{part.Text.Text}, nil
	case part.FunctionCall != nil:
		var texts []string
		if part.FunctionCall.Name != nil && *part.FunctionCall.Name != "" {
			texts = append(texts, *part.FunctionCall.Name)
		}
		return texts, nil
	case part.FunctionResponse != nil:
		var texts []string
		if part.FunctionResponse.Name != nil && *part.FunctionResponse.Name != "" {
			texts = append(texts, *part.FunctionResponse.Name)
		}
		return texts, nil
	case part.ExecutableCode != nil:
		if part.ExecutableCode.Code == "" {
			return nil, nil
		}
		return []string{part.ExecutableCode.Code}, nil
	case part.CodeExecutionResult != nil:
		if part.CodeExecutionResult.Output == nil || *part.CodeExecutionResult.Output == "" {
			return nil, nil
		}
		return []string{*part.CodeExecutionResult.Output}, nil
	case part.InlineData != nil:
		return nil, genai.NewInvalidConfigError("local tokenizer does not support non-text content: inline_data")
	case part.FileData != nil:
		return nil, genai.NewInvalidConfigError("local tokenizer does not support non-text content: file_data")
	}
	return nil, nil
}

// encode performs a greedy longest-prefix-match over the vocabulary,
// treating the SentencePiece meta-space-normalized vocabulary the same
// way normalizeTokenBytes prepared it. This is a byte-alignment-preserving
// approximation of SentencePiece's unigram segmentation sufficient for
// deterministic local estimation.
func (s *Subword) encode(text string) []int64 {
	remaining := []byte(strings.ReplaceAll(text, " ", "▁"))
	var ids []int64
	for len(remaining) > 0 {
		matchLen := 0
		matchID := int64(-1)
		limit := s.maxPieceLen
		if limit > len(remaining) {
			limit = len(remaining)
		}
		for l := limit; l >= 1; l-- {
			candidate := string(remaining[:l])
			if id, ok := s.lookup(candidate); ok {
				matchLen = l
				matchID = id
				break
			}
		}
		if matchID < 0 {
			// Unknown byte: emit it as a single-byte "token" keyed by its
			// negative codepoint so EstimateTokens still counts it, but it
			// never collides with a real vocabulary id.
			ids = append(ids, -int64(remaining[0])-1)
			remaining = remaining[1:]
			continue
		}
		ids = append(ids, matchID)
		remaining = remaining[matchLen:]
	}
	return ids
}

func (s *Subword) lookup(piece string) (int64, bool) {
	normalized := normalizeTokenBytes([]byte(piece))
	for id, b := range s.tokenBytes {
		if string(b) == string(normalized) || string(b) == piece {
			return id, true
		}
	}
	return 0, false
}

// parseSentencePiecePieces extracts the ordered piece strings from a raw
// SentencePiece ModelProto's top-level repeated "pieces" field (field 1,
// length-delimited), reading each SentencePiece submessage's "piece"
// string (sub-field 1). This is a minimal protobuf reader scoped to the
// one field this estimator needs, written directly against the wire
// format; it is not a general protobuf reader.
func parseSentencePiecePieces(data []byte) ([]string, error) {
	var pieces []string
	pos := 0
	for pos < len(data) {
		fieldNum, wireType, n, err := readTag(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		if wireType != 2 {
			skipped, err := skipField(data[pos:], wireType)
			if err != nil {
				return nil, err
			}
			pos += skipped
			continue
		}
		length, n, err := readVarint(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		if pos+int(length) > len(data) {
			return nil, fmt.Errorf("tokenizer: truncated protobuf message")
		}
		payload := data[pos : pos+int(length)]
		pos += int(length)

		if fieldNum == 1 {
			piece, err := extractPieceText(payload)
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, piece)
		}
	}
	if len(pieces) == 0 {
		return nil, fmt.Errorf("tokenizer: no pieces found in SentencePiece model")
	}
	return pieces, nil
}

func extractPieceText(data []byte) (string, error) {
	pos := 0
	for pos < len(data) {
		fieldNum, wireType, n, err := readTag(data[pos:])
		if err != nil {
			return "", err
		}
		pos += n
		if wireType != 2 {
			skipped, err := skipField(data[pos:], wireType)
			if err != nil {
				return "", err
			}
			pos += skipped
			continue
		}
		length, n, err := readVarint(data[pos:])
		if err != nil {
			return "", err
		}
		pos += n
		if pos+int(length) > len(data) {
			return "", fmt.Errorf("tokenizer: truncated piece message")
		}
		payload := data[pos : pos+int(length)]
		pos += int(length)
		if fieldNum == 1 {
			return string(payload), nil
		}
	}
	return "", nil
}

func readTag(data []byte) (fieldNum int, wireType int, n int, err error) {
	v, n, err := readVarint(data)
	if err != nil {
		return 0, 0, 0, err
	}
	return int(v >> 3), int(v & 0x7), n, nil
}

func readVarint(data []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for i, b := range data {
		if i > 9 {
			return 0, 0, fmt.Errorf("tokenizer: varint too long")
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("tokenizer: truncated varint")
}

func skipField(data []byte, wireType int) (int, error) {
	switch wireType {
	case 0: // varint
		_, n, err := readVarint(data)
		return n, err
	case 1: // 64-bit
		if len(data) < 8 {
			return 0, fmt.Errorf("tokenizer: truncated fixed64")
		}
		return 8, nil
	case 2: // length-delimited
		length, n, err := readVarint(data)
		if err != nil {
			return 0, err
		}
		return n + int(length), nil
	case 5: // 32-bit
		if len(data) < 4 {
			return 0, fmt.Errorf("tokenizer: truncated fixed32")
		}
		return 4, nil
	default:
		return 0, fmt.Errorf("tokenizer: unsupported wire type %d", wireType)
	}
}

// cachePathFor returns the on-disk cache path for a model URL, keyed by
// sha256(url) under the OS temp directory.
func cachePathFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(os.TempDir(), cacheDirName, hex.EncodeToString(sum[:]))
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// readCache returns the cached bytes if present and matching
// expectedHash; a hash mismatch evicts the stale entry.
func readCache(path, expectedHash string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if sha256Hex(data) == expectedHash {
		return data, nil
	}
	_ = os.Remove(path)
	return nil, nil
}

// writeCache stores data at path atomically via tmp-file + rename so
// concurrent processes never observe a partial write.
func writeCache(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// loadModelBytes loads a tokenizer model from the on-disk cache,
// downloading and verifying it against expectedHash on a cache miss. A
// stale cache entry whose hash no longer matches is evicted and
// re-downloaded; a hash mismatch on the freshly downloaded bytes is a
// hard error.
func loadModelBytes(url, expectedHash string) ([]byte, error) {
	path := cachePathFor(url)
	if cached, err := readCache(path, expectedHash); err != nil {
		return nil, err
	} else if cached != nil {
		return cached, nil
	}

	data, err := downloadModel(url)
	if err != nil {
		return nil, err
	}
	actual := sha256Hex(data)
	if actual != expectedHash {
		return nil, &genai.Error{Kind: genai.KindParse, Message: fmt.Sprintf("tokenizer model hash mismatch for %s: expected %s, got %s", url, expectedHash, actual)}
	}
	_ = writeCache(path, data)
	return data, nil
}

func downloadModel(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, genai.NewNetworkError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, genai.NewAPIError(resp.StatusCode, fmt.Sprintf("tokenizer model download failed for %s", url))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, genai.NewNetworkError(err)
	}
	return data, nil
}

// TokenBytesBase64 returns tok's bytes as a base64 string, the wire
// representation for ComputeTokensResponse entries.
func TokenBytesBase64(tok []byte) string {
	return base64.StdEncoding.EncodeToString(tok)
}
