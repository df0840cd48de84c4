// Package errors provides structured, coded errors for htmlfn.
//
// Every error carries a stable code (e.g. "H001") registered with a
// category, a short message and a longer explanation. Errors raised while
// decoding template documents also carry the source location, and Format
// prints the surrounding lines of the template file:
//
//	err := errors.New("H011", "blink").
//	    WithLocation("templates/index.yaml", 7, 5).
//	    WithSuggestion("Use one of: tag, text, path, each, within, if, group, safe, raw")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR H011: Unknown template node "blink"
//	//
//	//   templates/index.yaml:7:5
//	//
//	//        5 │   children:
//	//        6 │     - text: hello
//	//   →    7 │     - blink: true
//	//          │       ^
//	//
//	//   Hint: Use one of: tag, text, path, each, within, if, group, safe, raw
//
// # Error Categories
//
//   - argument: invalid values passed to the element builder
//   - render: values the renderer cannot flatten into text
//   - template: template document decoding errors
//   - config: htmlfn.json problems
//   - publish: object storage upload failures
//   - cli: command line usage errors
package errors
