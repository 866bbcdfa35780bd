package layers

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func names(c *Collection) []string {
	var out []string
	for _, l := range c.Layers() {
		out = append(out, l.Name())
	}
	return out
}

// stack returns a collection holding layers named by names, bottom first.
func stack(names ...string) *Collection {
	c := NewCollection(4, 4, WithoutBackground())
	for _, n := range names {
		c.CreateLayer(n)
	}
	return c
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewCollection(t *testing.T) {
	c := NewCollection(30, 20)
	if diff := cmp.Diff([]string{"Background"}, names(c)); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}
	if w, h := c.Size(); w != 30 || h != 20 {
		t.Errorf("Size() = %dx%d, want 30x20", w, h)
	}
	if l := c.Get(Index(0)); l.Width() != 30 || l.Height() != 20 {
		t.Errorf("background size = %dx%d", l.Width(), l.Height())
	}

	small := NewCollection(0, -5)
	if small.Width() != 1 || small.Height() != 1 {
		t.Errorf("NewCollection(0, -5) size = %dx%d, want 1x1", small.Width(), small.Height())
	}
}

func TestCreateLayerWhere(t *testing.T) {
	tests := []struct {
		name    string
		where   []Where
		index   int
		current int // index of B afterwards
	}{
		{"default", nil, 3, 1},
		{"top", []Where{Top}, 3, 1},
		{"bottom", []Where{Bottom}, 0, 2},
		{"above", []Where{Above}, 2, 1},
		{"below", []Where{Below}, 1, 2},
		{"index", []Where{At(1)}, 1, 2},
		{"index past end", []Where{At(99)}, 3, 1},
		{"negative index", []Where{At(-4)}, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := stack("A", "B", "C")
			c.SetCurrentIndex(1)
			b := c.Get(Index(1))

			l := c.CreateLayer("N", tt.where...)
			if got := c.IndexOf(l); got != tt.index {
				t.Errorf("IndexOf(new) = %d, want %d", got, tt.index)
			}
			if got := c.CurrentIndex(); got != tt.current {
				t.Errorf("CurrentIndex() = %d, want %d", got, tt.current)
			}
			if c.Get(Index(c.CurrentIndex())) != b {
				t.Error("current index no longer names B")
			}
		})
	}
}

func TestCollectionScenario(t *testing.T) {
	c := NewCollection(8, 8)
	sketch := c.CreateLayer("Sketch")
	if diff := cmp.Diff([]string{"Background", "Sketch"}, names(c)); diff != "" {
		t.Fatalf("after create (-want +got):\n%s", diff)
	}
	if err := c.MoveLayer(sketch, Bottom); err != nil {
		t.Fatalf("MoveLayer() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Sketch", "Background"}, names(c)); diff != "" {
		t.Errorf("after move (-want +got):\n%s", diff)
	}
}

func TestGet(t *testing.T) {
	c := stack("A", "B", "C")
	a, cl := c.Get(Index(0)), c.Get(Index(2))
	outsider := NewLayer("X", 4, 4)

	tests := []struct {
		name string
		loc  Locator
		want *Layer
	}{
		{"index", Index(2), cl},
		{"zero locator", Locator{}, a},
		{"top", TopLayer, cl},
		{"ref", Ref(a), a},
		{"ref outsider", Ref(outsider), nil},
		{"ref nil", Ref(nil), nil},
		{"index out of range", Index(3), nil},
		{"negative index", Index(-1), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Get(tt.loc); got != tt.want {
				t.Errorf("Get(%v) = %v, want %v", tt.loc, got, tt.want)
			}
		})
	}
	if got := stack().Get(TopLayer); got != nil {
		t.Errorf("Get(TopLayer) on empty = %v, want nil", got)
	}
}

func TestIndexOfAndPosition(t *testing.T) {
	c := stack("A", "B")
	b := c.Get(Index(1))
	if got := c.IndexOf(b); got != 1 {
		t.Errorf("IndexOf(B) = %d, want 1", got)
	}
	if got, err := c.Position(b); got != 1 || err != nil {
		t.Errorf("Position(B) = %d, %v", got, err)
	}

	x := NewLayer("X", 4, 4)
	if got := c.IndexOf(x); got != -1 {
		t.Errorf("IndexOf(outsider) = %d, want -1", got)
	}
	if _, err := c.Position(x); !errors.Is(err, ErrNotFound) {
		t.Errorf("Position(outsider) error = %v, want ErrNotFound", err)
	}
	if _, err := c.Position(nil); !errors.Is(err, ErrNilLayer) {
		t.Errorf("Position(nil) error = %v, want ErrNilLayer", err)
	}
}

func TestInsertLayer(t *testing.T) {
	c := stack("A")

	tests := []struct {
		name  string
		layer *Layer
		err   error
	}{
		{"ok", NewLayer("B", 4, 4), nil},
		{"duplicate", c.Get(Index(0)), ErrDuplicate},
		{"size mismatch", NewLayer("C", 5, 4), ErrSizeMismatch},
		{"nil", nil, ErrNilLayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.InsertLayer(tt.layer, Top)
			if !errors.Is(err, tt.err) {
				t.Errorf("InsertLayer() error = %v, want %v", err, tt.err)
			}
		})
	}
	if diff := cmp.Diff([]string{"A", "B"}, names(c)); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveLayer(t *testing.T) {
	t.Run("absent is a no-op", func(t *testing.T) {
		c := stack("A", "B")
		for _, loc := range []Locator{Index(2), Index(-1), Ref(NewLayer("X", 4, 4)), Ref(nil)} {
			if got := c.RemoveLayer(loc); got != nil {
				t.Errorf("RemoveLayer(%v) = %v, want nil", loc, got)
			}
		}
		if diff := cmp.Diff([]string{"A", "B"}, names(c)); diff != "" {
			t.Errorf("layers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("below current", func(t *testing.T) {
		c := stack("A", "B", "C")
		c.SetCurrentIndex(2)
		a := c.Get(Index(0))
		if got := c.RemoveLayer(Ref(a)); got != a {
			t.Fatalf("RemoveLayer() = %v, want A", got)
		}
		if got := c.CurrentIndex(); got != 1 {
			t.Errorf("CurrentIndex() = %d, want 1", got)
		}
		if got := c.Get(Index(c.CurrentIndex())).Name(); got != "C" {
			t.Errorf("current layer = %q, want C", got)
		}
	})

	t.Run("current at top", func(t *testing.T) {
		c := stack("A", "B", "C")
		c.SetCurrentIndex(2)
		c.RemoveLayer(TopLayer)
		if got := c.CurrentIndex(); got != 1 {
			t.Errorf("CurrentIndex() = %d, want 1", got)
		}
	})

	t.Run("last layer", func(t *testing.T) {
		c := stack("A")
		c.RemoveLayer(Index(0))
		if c.Len() != 0 || c.CurrentIndex() != 0 {
			t.Errorf("Len(), CurrentIndex() = %d, %d; want 0, 0", c.Len(), c.CurrentIndex())
		}
	})
}

func TestMoveLayer(t *testing.T) {
	tests := []struct {
		name  string
		layer int
		where Where
		want  []string
	}{
		{"to index", 0, At(2), []string{"B", "C", "A", "D"}},
		{"to top", 1, Top, []string{"A", "C", "D", "B"}},
		{"to bottom", 3, Bottom, []string{"D", "A", "B", "C"}},
		{"in place", 2, At(2), []string{"A", "B", "C", "D"}},
		{"past end", 0, At(10), []string{"B", "C", "D", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := stack("A", "B", "C", "D")
			l := c.Get(Index(tt.layer))
			if err := c.MoveLayer(l, tt.where); err != nil {
				t.Fatalf("MoveLayer() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, names(c)); diff != "" {
				t.Errorf("layers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMoveLayerFollowsCurrent(t *testing.T) {
	c := stack("A", "B", "C", "D")
	c.SetCurrentIndex(1) // B
	if err := c.MoveLayer(c.Get(Index(3)), Bottom); err != nil {
		t.Fatal(err)
	}
	if got := c.Get(Index(c.CurrentIndex())).Name(); got != "B" {
		t.Errorf("current layer = %q, want B", got)
	}

	b := c.Get(Index(c.CurrentIndex()))
	if err := c.MoveLayer(b, Top); err != nil {
		t.Fatal(err)
	}
	if got := c.CurrentIndex(); got != 3 {
		t.Errorf("CurrentIndex() = %d, want 3", got)
	}
}

func TestMoveLayerNotFound(t *testing.T) {
	c := stack("A", "B")
	a := c.RemoveLayer(Index(0))

	for _, l := range []*Layer{a, NewLayer("X", 4, 4)} {
		if err := c.MoveLayer(l, Top); !errors.Is(err, ErrNotFound) {
			t.Errorf("MoveLayer(%q) error = %v, want ErrNotFound", l.Name(), err)
		}
	}
	if diff := cmp.Diff([]string{"B"}, names(c)); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveUpDown(t *testing.T) {
	c := stack("A", "B", "C")
	a, cl := c.Get(Index(0)), c.Get(Index(2))

	steps := []struct {
		name string
		move func() error
		want []string
	}{
		{"up", func() error { return c.MoveUp(a) }, []string{"B", "A", "C"}},
		{"up again", func() error { return c.MoveUp(a) }, []string{"B", "C", "A"}},
		{"up at top", func() error { return c.MoveUp(a) }, []string{"B", "C", "A"}},
		{"down", func() error { return c.MoveDown(cl) }, []string{"C", "B", "A"}},
		{"down at bottom", func() error { return c.MoveDown(cl) }, []string{"C", "B", "A"}},
	}
	for _, s := range steps {
		if err := s.move(); err != nil {
			t.Fatalf("%s: error = %v", s.name, err)
		}
		if diff := cmp.Diff(s.want, names(c)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", s.name, diff)
		}
	}

	x := NewLayer("X", 4, 4)
	if err := c.MoveUp(x); !errors.Is(err, ErrNotFound) {
		t.Errorf("MoveUp(outsider) error = %v, want ErrNotFound", err)
	}
	if err := c.MoveDown(x); !errors.Is(err, ErrNotFound) {
		t.Errorf("MoveDown(outsider) error = %v, want ErrNotFound", err)
	}
}

func TestLoadAfterRemove(t *testing.T) {
	c := stack("A", "B")
	a := c.Get(Index(0))
	c.RemoveLayer(Ref(a))

	ld := a.LoadImage(imageURI(t, 1, 1, red), false)
	if err := waitLoad(t, ld); !errors.Is(err, ErrDetached) {
		t.Errorf("Wait() error = %v, want ErrDetached", err)
	}
	if got := a.Image().NRGBAAt(0, 0); got != transparent {
		t.Errorf("removed layer painted: %v", got)
	}

	// Reinserting makes loads apply again.
	if err := c.InsertLayer(a, Bottom); err != nil {
		t.Fatal(err)
	}
	if err := waitLoad(t, a.LoadImage(imageURI(t, 1, 1, red), false)); err != nil {
		t.Errorf("Wait() after reinsert error = %v", err)
	}
	if got := a.Image().NRGBAAt(0, 0); got != red {
		t.Errorf("pixel = %v, want red", got)
	}
}

func TestLoadAfterMove(t *testing.T) {
	c := stack("A", "B")
	a := c.Get(Index(0))
	if err := c.MoveLayer(a, Top); err != nil {
		t.Fatal(err)
	}
	if err := waitLoad(t, a.LoadImage(imageURI(t, 1, 1, blue), false)); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got := a.Image().NRGBAAt(0, 0); got != blue {
		t.Errorf("pixel = %v, want blue", got)
	}
}

func TestInsertLayerHeldElsewhere(t *testing.T) {
	a, b := stack("A"), stack("B")
	shared := a.Get(Index(0))

	if err := b.InsertLayer(shared, Top); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("InsertLayer() error = %v, want ErrDuplicate", err)
	}
	if diff := cmp.Diff([]string{"B"}, names(b)); diff != "" {
		t.Errorf("b names mismatch (-want +got):\n%s", diff)
	}
	if got := b.RemoveLayer(Ref(shared)); got != nil {
		t.Errorf("b.RemoveLayer() = %v, want nil", got)
	}

	// The layer still belongs to a, so loads keep applying.
	if err := waitLoad(t, shared.LoadImage(imageURI(t, 1, 1, red), false)); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
	if got := shared.Image().NRGBAAt(0, 0); got != red {
		t.Errorf("pixel = %v, want red", got)
	}

	a.RemoveLayer(Ref(shared))
	if err := b.InsertLayer(shared, Bottom); err != nil {
		t.Fatalf("InsertLayer() after release error = %v", err)
	}
	if diff := cmp.Diff([]string{"A", "B"}, names(b)); diff != "" {
		t.Errorf("b names mismatch (-want +got):\n%s", diff)
	}
	if err := waitLoad(t, shared.LoadImage(imageURI(t, 1, 1, blue), false)); err != nil {
		t.Errorf("Wait() in new owner error = %v", err)
	}
}

func TestCollectionWait(t *testing.T) {
	c := stack("A", "B", "C")
	var loads []*Load
	for i, l := range c.Layers() {
		loads = append(loads, l.LoadImage(imageURI(t, i+1, 1, red), false))
	}
	if err := c.Wait(testContext(t)); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	for i, ld := range loads {
		if ld.Status() != LoadComplete {
			t.Errorf("load %d status = %v, want complete", i, ld.Status())
		}
	}
	for _, l := range c.Layers() {
		if l.Pending() != 0 {
			t.Errorf("layer %q has %d pending loads", l.Name(), l.Pending())
		}
	}
}

func TestMerged(t *testing.T) {
	c := NewCollection(2, 2)
	bg := c.Get(Index(0))
	paint(bg, NewBrush(BrushData{Size: ptr(10), Color: ptr("red")}), 1)

	top := c.CreateLayer("Top")
	top.SetVisible(false)
	top.LoadImage(imageURI(t, 1, 1, blue), false) // not awaited

	img, err := c.Merged(testContext(t))
	if err != nil {
		t.Fatalf("Merged() error = %v", err)
	}
	if got := img.NRGBAAt(0, 0); got != blue {
		t.Errorf("pixel (0,0) = %v, want blue from the hidden top layer", got)
	}
	if got := img.NRGBAAt(1, 1); got != red {
		t.Errorf("pixel (1,1) = %v, want red", got)
	}

	// Half-transparent layers blend with source-over.
	c2 := stack("bottom", "top")
	c2.Get(Index(0)).LoadImage(imageURI(t, 1, 1, red), false)
	c2.Get(Index(1)).LoadImage(imageURI(t, 1, 1, color.NRGBA{B: 255, A: 128}), false)
	img, err = c2.Merged(testContext(t))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := img.NRGBAAt(0, 0), (color.NRGBA{R: 127, B: 128, A: 255}); got != want {
		t.Errorf("blended pixel = %v, want %v", got, want)
	}

	uri, err := c.MergedData(testContext(t))
	if err != nil {
		t.Fatalf("MergedData() error = %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("MergedData() = %.30q...", uri)
	}
}

func TestMergedEmpty(t *testing.T) {
	img, err := stack().Merged(testContext(t))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Errorf("bounds = %v, want 4x4", img.Bounds())
	}
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("Pix[%d] = %d, want transparent", i, v)
		}
	}
}

func TestCollectionJSONRoundTrip(t *testing.T) {
	c := NewCollection(6, 5)
	paint(c.Get(Index(0)), NewBrush(BrushData{Size: ptr(3), Color: ptr("#80c0ff")}), 2)
	ink := c.CreateLayer("Ink")
	paint(ink, NewBrush(BrushData{Size: ptr(2), Color: ptr("teal"), Opacity: ptr(0.6)}), 4)
	c.CreateLayer("Empty", Bottom)

	data, err := c.ToJSON(testContext(t))
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var doc struct {
		Width  int `json:"width"`
		Height int `json:"height"`
		Layers []struct {
			Name string `json:"name"`
		} `json:"layers"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Width != 6 || doc.Height != 5 || len(doc.Layers) != 3 || doc.Layers[0].Name != "Empty" {
		t.Errorf("document = %+v", doc)
	}

	got, err := FromJSON(testContext(t), data)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if diff := cmp.Diff(names(c), names(got)); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if w, h := got.Size(); w != 6 || h != 5 {
		t.Errorf("Size() = %dx%d, want 6x5", w, h)
	}
	for i, l := range c.Layers() {
		if diff := cmp.Diff(l.Image().Pix, got.Get(Index(i)).Image().Pix); diff != "" {
			t.Errorf("layer %q pixels mismatch (-want +got):\n%s", l.Name(), diff)
		}
	}

	// Serializing again yields the same document.
	again, err := got.ToJSON(testContext(t))
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(data) {
		t.Error("second round trip changed the document")
	}
}

func TestCollectionUnmarshalJSON(t *testing.T) {
	src := stack("A", "B")
	data, err := json.Marshal(src)
	if err != nil {
		t.Fatal(err)
	}
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff([]string{"A", "B"}, names(&c)); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalJSONReleasesLayers(t *testing.T) {
	c := stack("Old")
	old := c.Get(Index(0))

	doc := `{"width":4,"height":4,"layers":[{"name":"New","data":""},{"name":"Broken","data":"data:image/png;base64,AAAA"}]}`
	if err := json.Unmarshal([]byte(doc), c); err == nil {
		t.Fatal("Unmarshal() error = nil")
	}
	if c.Len() != 0 {
		t.Errorf("Len() after failed document = %d, want 0", c.Len())
	}

	other := stack()
	if err := other.InsertLayer(old, Top); err != nil {
		t.Errorf("InsertLayer(previous layer) error = %v", err)
	}
}

func TestFromJSON(t *testing.T) {
	blank := `{"width":3,"height":2,"layers":[{"name":"Blank","data":""}]}`
	c, err := FromJSON(testContext(t), []byte(blank))
	if err != nil {
		t.Fatalf("FromJSON(blank) error = %v", err)
	}
	if c.Len() != 1 || c.Width() != 3 {
		t.Errorf("Len(), Width() = %d, %d", c.Len(), c.Width())
	}

	c, err = FromJSON(testContext(t), []byte(`{"width":3,"height":2,"layers":[]}`))
	if err != nil || c.Len() != 0 {
		t.Errorf("FromJSON(no layers) = %v layers, %v", c.Len(), err)
	}

	tests := []struct {
		name string
		in   string
		is   error
		msg  string
	}{
		{"malformed", `{"width":`, nil, "decode document"},
		{"zero size", `{"width":0,"height":2,"layers":[]}`, ErrInvalidSize, ""},
		{"negative size", `{"width":4,"height":-1}`, ErrInvalidSize, ""},
		{"bad image", `{"width":1,"height":1,"layers":[{"name":"Broken","data":"data:image/png;base64,AAAA"}]}`, nil, `"Broken"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON(testContext(t), []byte(tt.in))
			if err == nil {
				t.Fatal("FromJSON() error = nil")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error = %q, want it to mention %q", err, tt.msg)
			}
		})
	}
}
