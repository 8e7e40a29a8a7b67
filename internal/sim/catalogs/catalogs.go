package catalogs

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BlockID is the palette id of a block type. Air is 0 and is never stored.
type BlockID uint16

const (
	Air BlockID = iota
	Bedrock
	Grass
	Dirt
	Stone
	Wood
	Leaves

	numBlocks
)

// Placeable is the hotbar order, Digit1..Digit5.
var Placeable = []BlockID{Grass, Dirt, Stone, Wood, Leaves}

var blockKeys = [numBlocks]string{
	Air:     "AIR",
	Bedrock: "BEDROCK",
	Grass:   "GRASS",
	Dirt:    "DIRT",
	Stone:   "STONE",
	Wood:    "WOOD",
	Leaves:  "LEAVES",
}

func (b BlockID) Valid() bool { return b < numBlocks }

func (b BlockID) Key() string {
	if !b.Valid() {
		return fmt.Sprintf("UNKNOWN_%d", uint16(b))
	}
	return blockKeys[b]
}

// Solid reports whether the block stops movement. Leaves are walk-through.
func (b BlockID) Solid() bool {
	return b != Air && b != Leaves && b.Valid()
}

func (b BlockID) Breakable() bool {
	return b != Bedrock
}

type BlockDef struct {
	ID        BlockID `json:"-"`
	Key       string  `json:"id"`
	Name      string  `json:"name"`
	Texture   string  `json:"texture"`
	Solid     bool    `json:"solid"`
	Breakable bool    `json:"breakable"`
}

type BlockCatalog struct {
	Defs          []BlockDef
	Index         map[string]BlockID
	PaletteDigest string
	DefsDigest    string
}

func (c *BlockCatalog) Def(b BlockID) (BlockDef, bool) {
	if c == nil || !b.Valid() || int(b) >= len(c.Defs) {
		return BlockDef{}, false
	}
	return c.Defs[b], true
}

//go:embed blocks.schema.json
var blocksSchemaJSON string

var blocksSchema = jsonschema.MustCompileString("blocks.schema.json", blocksSchemaJSON)

var defaultNames = [numBlocks]string{
	Air:     "Air",
	Bedrock: "Bedrock",
	Grass:   "Grass",
	Dirt:    "Dirt",
	Stone:   "Stone",
	Wood:    "Wood",
	Leaves:  "Leaves",
}

// Default returns the built-in catalog. Texture references are left empty; the
// renderer falls back to its own asset table.
func Default() *BlockCatalog {
	c := &BlockCatalog{
		Defs:  make([]BlockDef, numBlocks),
		Index: make(map[string]BlockID, numBlocks),
	}
	for i := BlockID(0); i < numBlocks; i++ {
		c.Defs[i] = BlockDef{
			ID:        i,
			Key:       blockKeys[i],
			Name:      defaultNames[i],
			Solid:     i.Solid(),
			Breakable: i.Breakable(),
		}
		c.Index[blockKeys[i]] = i
	}
	c.digest()
	return c
}

type blockOverride struct {
	ID      string  `json:"id"`
	Name    *string `json:"name,omitempty"`
	Texture *string `json:"texture,omitempty"`
}

// Load reads <configDir>/blocks.json on top of Default. A missing file is not an error.
// Only display names and texture references can be overridden; solidity and
// breakability are fixed per block type.
func Load(configDir string) (*BlockCatalog, error) {
	c := Default()
	path := filepath.Join(configDir, "blocks.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, err
	}
	if err := c.apply(raw); err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}
	return c, nil
}

func (c *BlockCatalog) apply(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := blocksSchema.Validate(doc); err != nil {
		return err
	}
	var overrides []blockOverride
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return err
	}
	for _, o := range overrides {
		id, ok := c.Index[o.ID]
		if !ok || id == Air {
			return fmt.Errorf("unknown block id %q", o.ID)
		}
		if o.Name != nil {
			c.Defs[id].Name = *o.Name
		}
		if o.Texture != nil {
			c.Defs[id].Texture = *o.Texture
		}
	}
	c.digest()
	return nil
}

func (c *BlockCatalog) digest() {
	keys := make([]string, len(c.Defs))
	for i, d := range c.Defs {
		keys[i] = d.Key
	}
	palJSON, _ := json.Marshal(keys)
	c.PaletteDigest = sha256Hex(palJSON)
	defsJSON, _ := json.Marshal(c.Defs)
	c.DefsDigest = sha256Hex(defsJSON)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
