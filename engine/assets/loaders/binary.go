package loaders

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string) (*metadata.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("%w: reading `%s`: %w", core.ErrResourceLoad, path, err)
		core.LogError(err.Error())
		return nil, err
	}

	res, err := bytesToBytecode(buf)
	if err != nil {
		err = fmt.Errorf("%w: `%s`: %w", core.ErrResourceLoad, path, err)
		core.LogError(err.Error())
		return nil, err
	}

	return &metadata.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		Type:     metadata.ResourceTypeBinary,
		DataSize: uint64(len(buf)),
		Data:     res,
	}, nil
}

func (bl *BinaryLoader) Unload(*metadata.Resource) error {
	return nil
}

// LoadSPIRV reads a compiled shader module.
func LoadSPIRV(path string) ([]uint32, error) {
	res, err := (&BinaryLoader{}).Load(path)
	if err != nil {
		return nil, err
	}
	return res.Data.([]uint32), nil
}

func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("bytecode size %d is not a multiple of 4", len(b))
	}
	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	if byteCode[0] != SPIRVMagic {
		return nil, fmt.Errorf("bad SPIR-V magic 0x%08x", byteCode[0])
	}
	return byteCode, nil
}
