package parser

import (
	"github.com/hesperix/hesper/grammar"
	"github.com/hesperix/hesper/load"
	"github.com/hesperix/hesper/transform"
)

// arithmeticTransformer builds the handler set for calculatorSrc's
// add/sub/mul/div/neg nodes, operating on already-folded float64 children.
func arithmeticTransformer() *transform.Transformer {
	tr := transform.New()
	tr.On("add", func(name string, children []interface{}) interface{} {
		return children[0].(float64) + children[1].(float64)
	})
	tr.On("sub", func(name string, children []interface{}) interface{} {
		return children[0].(float64) - children[1].(float64)
	})
	tr.On("mul", func(name string, children []interface{}) interface{} {
		return children[0].(float64) * children[1].(float64)
	})
	tr.On("div", func(name string, children []interface{}) interface{} {
		return children[0].(float64) / children[1].(float64)
	})
	tr.On("neg", func(name string, children []interface{}) interface{} {
		return -children[0].(float64)
	})
	return tr
}

// stdlibLoader serves a tiny in-memory stand-in for the kind of "common"
// terminal library a real Loader would back with an embedded filesystem,
// exactly as package load's own tests do.
type stdlibLoader struct {
	modules map[string][]byte
}

func (l *stdlibLoader) Load(path []string) (*grammar.File, error) {
	key := ""
	for i, p := range path {
		if i > 0 {
			key += "."
		}
		key += p
	}
	return grammar.Parse(l.modules[key])
}

func newStdlibLoader() load.Loader {
	return &stdlibLoader{modules: map[string][]byte{
		"common": []byte(`
NUMBER: /[0-9]+(\.[0-9]+)?/
`),
	}}
}
