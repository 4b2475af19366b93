package walker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-globalmail/message"
	"github.com/zostay/go-globalmail/message/walker"
)

const msg = `X-Where: A
Content-type: multipart/mixed; boundary=aaaaaaa

--aaaaaaa
X-Where: B
Content-type: multipart/mixed; boundary=bbbbbbb

--bbbbbbb
X-Where: E
Content-type: text/plain

--bbbbbbb
X-Where: F
Content-type: text/plain

--bbbbbbb--
--aaaaaaa
X-Where: C
Content-type: message/global

X-Where: G
Content-type: text/plain

Ⓗⓔⓛⓛⓞ
--aaaaaaa
X-Where: D
Content-type: multipart/mixed; boundary=ddddddd

--ddddddd
X-Where: I
Content-type: text/plain

--ddddddd
X-Where: J
Content-type: text/plain

--ddddddd--
--aaaaaaa--
`

type visit struct {
	where string
	depth int
	index int
}

func collect(t *testing.T, got *[]visit) walker.Parts {
	return func(depth, i int, part message.Part) error {
		where, err := part.GetHeader().Get("X-Where")
		assert.NoError(t, err)
		*got = append(*got, visit{where, depth, i})
		return nil
	}
}

func TestParts_Walk(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(strings.NewReader(msg))
	require.NoError(t, err)

	var got []visit
	require.NoError(t, collect(t, &got).Walk(m))

	assert.Equal(t, []visit{
		{"A", 0, 0},
		{"B", 1, 0},
		{"E", 2, 0},
		{"F", 2, 1},
		{"C", 1, 1},
		{"G", 2, 0},
		{"D", 1, 2},
		{"I", 2, 0},
		{"J", 2, 1},
	}, got)
}

func TestParts_WalkLeaves(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(strings.NewReader(msg))
	require.NoError(t, err)

	var got []visit
	require.NoError(t, collect(t, &got).WalkLeaves(m))

	assert.Equal(t, []visit{
		{"E", 2, 0},
		{"F", 2, 1},
		{"G", 2, 0},
		{"I", 2, 0},
		{"J", 2, 1},
	}, got)
}

func TestParts_WalkBranches(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(strings.NewReader(msg))
	require.NoError(t, err)

	var got []visit
	require.NoError(t, collect(t, &got).WalkBranches(m))

	assert.Equal(t, []visit{
		{"A", 0, 0},
		{"B", 1, 0},
		{"C", 1, 1},
		{"D", 1, 2},
	}, got)
}

func TestParts_SkipParts(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(strings.NewReader(msg))
	require.NoError(t, err)

	var got []string
	var pw walker.Parts = func(depth, i int, part message.Part) error {
		where, _ := part.GetHeader().Get("X-Where")
		got = append(got, where)
		if where == "B" || where == "C" {
			return walker.SkipParts
		}
		return nil
	}
	require.NoError(t, pw.Walk(m))

	assert.Equal(t, []string{"A", "B", "C", "D", "I", "J"}, got)
}

func TestProcess(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(strings.NewReader(msg))
	require.NoError(t, err)

	paths := map[string]string{}
	err = walker.Process(func(part message.Part, parents []message.Part) error {
		where, _ := part.GetHeader().Get("X-Where")
		path := ""
		for _, p := range parents {
			w, _ := p.GetHeader().Get("X-Where")
			path += w + "/"
		}
		paths[where] = path + where
		return nil
	}, m)
	require.NoError(t, err)

	assert.Equal(t, "A", paths["A"])
	assert.Equal(t, "A/B/F", paths["F"])
	assert.Equal(t, "A/C/G", paths["G"])
	assert.Equal(t, "A/D/J", paths["J"])
	assert.Len(t, paths, 9)
}
