package state

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(id string, x1, y1, x2, y2 float64) Shape {
	return Shape{
		ID:          id,
		Tool:        ToolRectangle,
		Points:      []Point{{X: x1, Y: y1}, {X: x2, Y: y2}},
		Color:       "#ffffff",
		StrokeWidth: 2,
	}
}

func TestParseShapeList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "blank", input: "  ", want: 0},
		{name: "empty array", input: "[]", want: 0},
		{name: "one shape", input: `[{"id":"a","tool":"pen","points":[{"x":1,"y":2}],"color":"#fff","width":2}]`, want: 1},
		{name: "not json", input: "{oops", wantErr: true},
		{name: "object", input: `{"id":"a"}`, wantErr: true},
		{name: "null", input: "null", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseShapeList(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			assert.NotNil(t, got)
		})
	}
}

func TestParseShapeList_NotASequence(t *testing.T) {
	_, err := ParseShapeList(`42`)
	assert.ErrorIs(t, err, ErrNotASequence)
}

func TestParseShapeList_FreehandAlias(t *testing.T) {
	got, err := ParseShapeList(`[{"id":"a","tool":"freehand","points":[]}]`)
	require.NoError(t, err)
	assert.Equal(t, ToolFreehand, got[0].Tool)
}

func TestSerializeRoundTripKeepsTextFields(t *testing.T) {
	list := ShapeList{{
		ID:          "t1",
		Tool:        ToolText,
		Points:      []Point{{X: 3, Y: 4}},
		Color:       "#00ff00",
		StrokeWidth: 2,
		Text:        "hello <world>",
		FontSize:    20,
		TextWidth:   300,
		TextHeight:  150,
	}}
	text, err := list.Serialize()
	require.NoError(t, err)
	assert.Contains(t, text, `"textWidth":300`)
	assert.Contains(t, text, "<world>")

	back, err := ParseShapeList(text)
	require.NoError(t, err)
	assert.True(t, list.Equal(back))
}

func TestSerializeEmpty(t *testing.T) {
	text, err := ShapeList(nil).Serialize()
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
}

func TestSerializeKeepsSetFlagsAndOmitsClearOnes(t *testing.T) {
	text, err := ShapeList{
		{ID: "a", Tool: ToolRectangle, Selected: true},
		{ID: "b", Tool: ToolText, IsEditing: true},
		{ID: "c", Tool: ToolCircle},
	}.Serialize()
	require.NoError(t, err)
	assert.Contains(t, text, `"selected":true`)
	assert.Contains(t, text, `"isEditing":true`)
	assert.Equal(t, 1, strings.Count(text, `"selected"`))
	assert.Equal(t, 1, strings.Count(text, `"isEditing"`))
}

func TestShapeCloneDoesNotAlias(t *testing.T) {
	s := rect("a", 0, 0, 10, 10)
	s.Transform = &Transform{Scale: 1}
	c := s.Clone()
	c.Points[0].X = 99
	c.Transform.Scale = 3
	assert.Equal(t, 0.0, s.Points[0].X)
	assert.Equal(t, 1.0, s.Transform.Scale)
}

func TestStore(t *testing.T) {
	st := NewStore(ShapeList{rect("a", 0, 0, 1, 1)})
	st.Append(rect("b", 0, 0, 2, 2))
	st.Append(rect("c", 0, 0, 3, 3))
	assert.Equal(t, 3, st.Len())

	// same id replaces in place
	st.Append(rect("b", 5, 5, 6, 6))
	assert.Equal(t, 3, st.Len())
	b, ok := st.Get("b")
	require.True(t, ok)
	assert.Equal(t, 5.0, b.Points[0].X)

	ok = st.Update("c", func(s *Shape) { s.Color = "#000000" })
	assert.True(t, ok)
	assert.False(t, st.Update("missing", func(s *Shape) {}))

	st.Select("a")
	shapes := st.Shapes()
	assert.True(t, shapes[0].Selected)
	assert.False(t, shapes[1].Selected)

	assert.Equal(t, 2, st.Remove("a", "c", "nope"))
	assert.Equal(t, []string{"b"}, ids(st.Shapes()))
}

func TestStoreShapesIsACopy(t *testing.T) {
	st := NewStore(ShapeList{rect("a", 0, 0, 1, 1)})
	got := st.Shapes()
	got[0].Points[0].X = 42
	again := st.Shapes()
	assert.Equal(t, 0.0, again[0].Points[0].X)
}

func TestHistory_UndoRedo(t *testing.T) {
	h := NewHistory(ShapeList{}, 0)
	s1 := ShapeList{rect("a", 0, 0, 1, 1)}
	s2 := append(s1.Clone(), rect("b", 0, 0, 1, 1))
	h.Push(s1)
	h.Push(s2)

	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	got, ok := h.Undo()
	require.True(t, ok)
	assert.True(t, got.Equal(s1))

	got, ok = h.Redo()
	require.True(t, ok)
	assert.True(t, got.Equal(s2))

	_, ok = h.Redo()
	assert.False(t, ok)
}

func TestHistory_UndoAtStartIsNoop(t *testing.T) {
	h := NewHistory(ShapeList{}, 0)
	_, ok := h.Undo()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Cursor())
}

func TestHistory_UndoThenRedoNRestores(t *testing.T) {
	h := NewHistory(ShapeList{}, 0)
	var lists []ShapeList
	cur := ShapeList{}
	for i := 0; i < 10; i++ {
		cur = append(cur.Clone(), rect(fmt.Sprint(i), 0, 0, float64(i), float64(i)))
		h.Push(cur)
		lists = append(lists, cur)
	}
	before := h.Current()

	for n := 1; n <= 10; n++ {
		for i := 0; i < n; i++ {
			_, ok := h.Undo()
			require.True(t, ok)
		}
		var got ShapeList
		for i := 0; i < n; i++ {
			var ok bool
			got, ok = h.Redo()
			require.True(t, ok)
		}
		assert.True(t, got.Equal(before), "n=%d", n)
	}
}

func TestHistory_PushDiscardsRedoBranch(t *testing.T) {
	h := NewHistory(ShapeList{}, 0)
	h.Push(ShapeList{rect("a", 0, 0, 1, 1)})
	h.Push(ShapeList{rect("b", 0, 0, 1, 1)})
	h.Undo()
	h.Push(ShapeList{rect("c", 0, 0, 1, 1)})

	assert.Equal(t, 3, h.Len())
	assert.False(t, h.CanRedo())
	assert.Equal(t, []string{"c"}, ids(h.Current()))
}

func TestHistory_CapEvictsOldest(t *testing.T) {
	h := NewHistory(ShapeList{}, 0)
	for i := 0; i < DefaultHistoryLimit+5; i++ {
		h.Push(ShapeList{rect(fmt.Sprint(i), 0, 0, 1, 1)})
		assert.LessOrEqual(t, h.Len(), DefaultHistoryLimit)
	}
	assert.Equal(t, DefaultHistoryLimit, h.Len())
	assert.Equal(t, DefaultHistoryLimit-1, h.Cursor())

	// walk to the oldest retained entry
	var oldest ShapeList
	for {
		l, ok := h.Undo()
		if !ok {
			break
		}
		oldest = l
	}
	// 55 pushes on top of the initial empty entry: 56 total, 6 evicted, so "5" is oldest
	assert.Equal(t, []string{"5"}, ids(oldest))
}

func TestHistory_EntriesDoNotAliasCaller(t *testing.T) {
	list := ShapeList{rect("a", 0, 0, 1, 1)}
	h := NewHistory(ShapeList{}, 0)
	h.Push(list)
	list[0].Points[0].X = 100
	assert.Equal(t, 0.0, h.Current()[0].Points[0].X)
}

func ids(l ShapeList) []string {
	out := make([]string, 0, len(l))
	for _, s := range l {
		out = append(out, s.ID)
	}
	return out
}
