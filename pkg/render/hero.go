package render

import (
	"bytes"
	"html/template"
)

// heroSource is the site banner. It carries no state: a greeting heading,
// a one-line bio, and a single link to the about page.
const heroSource = `<section class="hero">
  <h1>Hello, I&#39;m a Java engineer who writes things down.</h1>
  <p>Long-form tutorials on the Java platform: SOLID design, generics, strings, and the Streams API.</p>
  <a href="/about">Learn More</a>
</section>
`

var heroTmpl = template.Must(template.New("hero").Parse(heroSource))

// Hero renders the banner. It takes no input and always produces the same
// markup, so repeated calls are interchangeable.
func Hero() template.HTML {
	var buf bytes.Buffer
	if err := heroTmpl.Execute(&buf, nil); err != nil {
		// The template is constant and parsed at init; execution cannot fail.
		panic(err)
	}
	return template.HTML(buf.String())
}
