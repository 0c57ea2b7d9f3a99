package xliff

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<xliff version="1.2" xmlns="urn:oasis:names:tc:xliff:document:1.2">
  <file original="doc.docx" source-language="en" target-language="ar-EG" datatype="plaintext">
    <body>
      <trans-unit id="1">
        <source>Hello</source>
        <target state="new">مرحبا</target>
      </trans-unit>
      <group>
        <trans-unit id="2">
          <source>Hello <b>world</b>!</source>
        </trans-unit>
      </group>
    </body>
  </file>
</xliff>
`

func TestParse_TransUnitsAtAnyDepth(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	units := doc.TransUnits()
	if len(units) != 2 {
		t.Fatalf("TransUnits() len = %d, want 2", len(units))
	}
	if id, _ := units[1].AttrValue("id"); id != "2" {
		t.Fatalf("nested unit id = %q, want 2", id)
	}
}

func TestPlainText_StripsInlineMarkup(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	src := doc.TransUnits()[1].Child("source")
	if src == nil {
		t.Fatal("source child not found")
	}
	if got := src.PlainText(); got != "Hello world!" {
		t.Fatalf("PlainText() = %q, want %q", got, "Hello world!")
	}
}

func TestParse_NamespacePrefixesAreTransparent(t *testing.T) {
	prefixed := `<?xml version="1.0"?>
<x:xliff xmlns:x="urn:oasis:names:tc:xliff:document:1.2" version="1.2">
  <x:file original="a" source-language="en" target-language="ar">
    <x:body>
      <x:trans-unit id="1"><x:source>Hello</x:source></x:trans-unit>
    </x:body>
  </x:file>
</x:xliff>`
	doc, err := Parse([]byte(prefixed))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	units := doc.TransUnits()
	if len(units) != 1 {
		t.Fatalf("TransUnits() len = %d, want 1", len(units))
	}
	src := units[0].Child("source")
	if src == nil {
		t.Fatal("source child not found under prefixed trans-unit")
	}
	if got := src.PlainText(); got != "Hello" {
		t.Fatalf("PlainText() = %q, want Hello", got)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte("<xliff><file></xliff>")); err == nil {
		t.Fatal("Parse(malformed) error = nil, want error")
	}
	if _, err := Parse([]byte("   ")); err == nil {
		t.Fatal("Parse(empty) error = nil, want error")
	}
}

func TestEnsureChild_CreatesWithoutDisturbingSiblings(t *testing.T) {
	doc, err := Parse([]byte(`<tu><source>Hi</source><note>keep me</note></tu>`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	tu := doc.Root

	target := tu.EnsureChild("target")
	if target == nil {
		t.Fatal("EnsureChild returned nil")
	}
	if tu.Child("note") == nil || tu.Child("source") == nil {
		t.Fatal("EnsureChild disturbed existing siblings")
	}
	if again := tu.EnsureChild("target"); again != target {
		t.Fatal("EnsureChild created a second target")
	}
}

func TestSetText_ReplacesInlineChildren(t *testing.T) {
	doc, err := Parse([]byte(`<target>old <b>markup</b> tail</target>`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	doc.Root.SetText("new")
	if got := doc.Root.PlainText(); got != "new" {
		t.Fatalf("PlainText() after SetText = %q, want new", got)
	}
	if len(doc.Root.Children) != 0 {
		t.Fatalf("children after SetText = %d, want 0", len(doc.Root.Children))
	}
}

func TestSetAttr_ReplaceAndAdd(t *testing.T) {
	doc, err := Parse([]byte(`<target state="new">x</target>`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	e := doc.Root

	e.SetAttr("", "state", "translated")
	if got, _ := e.AttrValue("state"); got != "translated" {
		t.Fatalf("state = %q, want translated", got)
	}
	if len(e.Attr) != 1 {
		t.Fatalf("attr count = %d, want 1 (replace, not append)", len(e.Attr))
	}

	e.SetAttr("xml", "lang", "ar-EG")
	out := string((&Document{Root: e}).Marshal())
	if !strings.Contains(out, `xml:lang="ar-EG"`) {
		t.Fatalf("marshal output missing xml:lang, got: %s", out)
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	first := doc.Marshal()
	second := doc.Marshal()
	if !bytes.Equal(first, second) {
		t.Fatal("Marshal is not deterministic")
	}
	if !bytes.HasPrefix(first, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)) {
		t.Fatalf("missing XML declaration, got: %.60s", first)
	}
}

func TestMarshal_RestoresNamespacePrefixes(t *testing.T) {
	in := `<x:xliff xmlns:x="urn:x" xmlns:mq="urn:mq"><x:body><mq:prop>v</mq:prop></x:body></x:xliff>`
	doc, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out := string(doc.Marshal())
	for _, want := range []string{"<x:xliff", `xmlns:x="urn:x"`, "<mq:prop>v</mq:prop>", "</x:xliff>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("marshal output missing %q, got: %s", want, out)
		}
	}
}

func TestMarshal_DefaultNamespaceStaysUnprefixed(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out := string(doc.Marshal())
	if !strings.Contains(out, "<trans-unit") || strings.Contains(out, ":trans-unit") {
		t.Fatalf("default-namespace elements should stay unprefixed, got: %s", out)
	}
	if !strings.Contains(out, `xmlns="urn:oasis:names:tc:xliff:document:1.2"`) {
		t.Fatal("default xmlns declaration lost")
	}
}

func TestMarshal_EscapesSpecials(t *testing.T) {
	doc, err := Parse([]byte(`<u a="x&amp;y">1 &lt; 2 &amp; 3</u>`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out := string(doc.Marshal())
	if !strings.Contains(out, "1 &lt; 2 &amp; 3") {
		t.Fatalf("text not re-escaped, got: %s", out)
	}
	if !strings.Contains(out, `a="x&amp;y"`) {
		t.Fatalf("attribute not re-escaped, got: %s", out)
	}
}

func TestMarshal_RoundTripPreservesContent(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	reparsed, err := Parse(doc.Marshal())
	if err != nil {
		t.Fatalf("Parse(Marshal()) error: %v", err)
	}
	a, b := doc.TransUnits(), reparsed.TransUnits()
	if len(a) != len(b) {
		t.Fatalf("unit count changed: %d -> %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Child("source").PlainText() != b[i].Child("source").PlainText() {
			t.Fatalf("unit %d source changed across round trip", i)
		}
	}
}

func TestWriteFile_CreatesParentDirs(t *testing.T) {
	doc, err := Parse([]byte(`<xliff/>`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out", "nested", "doc.xlf")
	if err := doc.WriteFile(path); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "nope.xlf")); err == nil {
		t.Fatal("ParseFile(missing) error = nil, want error")
	}
}
