package fragment_test

import (
	"fmt"

	"github.com/benilovj/webby/pkg/fragment"
	"github.com/benilovj/webby/pkg/markup"
)

func ExampleFromNode() {
	// Locate a fragment tag in page markup
	doc, _ := markup.Parse(`<graphviz type="svg" alt="deps graph">digraph deps { a -> b }</graphviz>`)
	frag := fragment.FromNode(doc.FindAll(fragment.TagName)[0])

	name, _ := frag.Name()
	fmt.Println("Name:", name)
	fmt.Println("Image:", frag.ImageName(name))
	fmt.Println("Tag:", frag.ImgTag(name))
	// Output:
	// Name: deps
	// Image: deps.svg
	// Tag: <img src="deps.svg" alt="deps graph" />
}

func ExampleFragment_NeedsMap() {
	linked := &fragment.Fragment{Body: `digraph g { a [URL="/a"] }`}
	plain := &fragment.Fragment{Body: `digraph g { a -> b }`}

	fmt.Println(linked.NeedsMap())
	fmt.Println(plain.NeedsMap())
	// Output:
	// true
	// false
}
