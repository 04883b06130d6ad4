// Package semantic is the in-memory PDF model the builder produces and the
// writer serializes: pages, their content streams and the fonts they use.
package semantic

// Document is the semantic representation of a PDF.
type Document struct {
	Pages []*Page
	Info  *DocumentInfo
	Lang  string
}

// Page holds one page's geometry, resources and content.
type Page struct {
	Index     int
	MediaBox  Rectangle
	Resources *Resources
	Contents  []ContentStream
}

// ContentStream is a sequence of operations on a page.
type ContentStream struct {
	Operations []Operation
}

// Operation represents a PDF operator and operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// Operand is one of the operand types below.
type Operand interface{ operand() }

type NumberOperand struct{ Value float64 }

func (NumberOperand) operand() {}

type NameOperand struct{ Value string }

func (NameOperand) operand() {}

// StringOperand is serialized as a hex string when Hex is set, which keeps
// two-byte glyph codes readable in the content stream.
type StringOperand struct {
	Value []byte
	Hex   bool
}

func (StringOperand) operand() {}

type ArrayOperand struct{ Values []Operand }

func (ArrayOperand) operand() {}

type DictOperand struct{ Values map[string]Operand }

func (DictOperand) operand() {}

// Resources lists the named resources a page's content refers to.
type Resources struct {
	Fonts map[string]*Font
}

// Font represents a font resource.
type Font struct {
	Subtype        string // Type0 for embedded TrueType
	BaseFont       string
	Encoding       string
	Widths         map[int]int // character code -> width
	ToUnicode      map[int][]rune
	CIDSystemInfo  *CIDSystemInfo
	DescendantFont *CIDFont
	Descriptor     *FontDescriptor
}

// Rectangle represents a PDF rectangle.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// CIDSystemInfo describes the registry/ordering of a CID font.
type CIDSystemInfo struct {
	Registry   string
	Ordering   string
	Supplement int
}

// CIDFont describes a descendant font for Type0 fonts.
type CIDFont struct {
	Subtype         string // CIDFontType0 or CIDFontType2
	BaseFont        string
	CIDSystemInfo   CIDSystemInfo
	DW              int
	W               map[int]int // CID -> width
	CIDToGIDMapName string      // "Identity" when codes are glyph indices
	Descriptor      *FontDescriptor
}

// FontDescriptor carries metrics and font file embedding details.
type FontDescriptor struct {
	FontName     string
	Flags        int
	ItalicAngle  float64
	Ascent       float64
	Descent      float64
	CapHeight    float64
	StemV        int
	FontBBox     [4]float64
	FontFile     []byte
	FontFileType string // FontFile2 (TrueType)
}

// DocumentInfo models /Info dictionary values.
type DocumentInfo struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Keywords []string
}
