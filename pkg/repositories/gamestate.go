package repositories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/repositories/models"
	"github.com/klauspost/compress/zstd"
)

// savedGameState is the blob stored alongside a game: currently the board
// element states at save time.
type savedGameState struct {
	Elements []models.ElementState `json:"elements"`
}

func encodeGameState(elements []models.ElementState) ([]byte, error) {
	b, err := json.Marshal(savedGameState{Elements: elements})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state: %v", err)
	}

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress game state: %v", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}

	return compressed.Bytes(), nil
}

func decodeGameState(data []byte) ([]models.ElementState, error) {
	if len(data) == 0 {
		return nil, nil
	}

	compReader, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer compReader.Close()

	b, err := io.ReadAll(compReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read decompressed game state: %v", err)
	}

	state := savedGameState{}
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %v", err)
	}

	return state.Elements, nil
}
