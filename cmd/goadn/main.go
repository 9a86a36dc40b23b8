// Command goadn checks, validates, reformats and analyzes package documents.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"

	j "github.com/goccy/go-json"

	goadn "github.com/reoring/goadn"
	"github.com/reoring/goadn/i18n"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "check":
		checkCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	case "dump":
		dumpCmd(os.Args[2:])
	case "analyze":
		analyzeCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "goadn CLI\n\nUsage:\n  goadn check [-lang L] schema.(jadn|json|yaml)\n  goadn validate [-lang L] -schema schema.(jadn|json|yaml) -type TypeName instance.json\n  goadn dump schema.(jadn|json)\n  goadn analyze schema.(jadn|json)")
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	lang := fs.String("lang", "en", "message language")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	i18n.SetLanguage(*lang)

	path := fs.Arg(0)
	data := readFile(path)

	if isYAML(path) {
		if _, err := goadn.LoadYAML(data); err != nil {
			reportError(err)
			os.Exit(1)
		}
		fmt.Printf("%s: ok\n", path)
		return
	}

	// Duplicate keys vanish during decoding, so scan the raw bytes first.
	if iss := goadn.DetectDuplicateKeys(data); len(iss) > 0 {
		printIssues(iss)
		os.Exit(1)
	}
	doc, err := goadn.DecodeSchema(data)
	if err != nil {
		fatalf("%v", err)
	}
	if _, err := goadn.CheckSchema(doc); err != nil {
		reportError(err)
		os.Exit(1)
	}
	fmt.Printf("%s: ok\n", path)
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "package document to validate against")
	typeName := fs.String("type", "", "type name; defaults to the package's first root")
	lang := fs.String("lang", "en", "message language")
	_ = fs.Parse(args)
	if *schemaPath == "" || fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	i18n.SetLanguage(*lang)

	pkg := loadPackage(*schemaPath)
	name := *typeName
	if name == "" {
		roots := pkg.Roots()
		if len(roots) == 0 {
			fatalf("%s declares no roots; pass -type", *schemaPath)
		}
		name = roots[0]
	}

	data := readFile(fs.Arg(0))
	if iss := goadn.DetectDuplicateKeys(data); len(iss) > 0 {
		printIssues(iss)
		os.Exit(1)
	}
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		fatalf("decode instance: %v", err)
	}

	if iss := pkg.Validate(name, v); len(iss) > 0 {
		printIssues(iss)
		os.Exit(1)
	}
	fmt.Printf("%s: valid %s\n", fs.Arg(0), name)
}

func dumpCmd(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	doc := loadDocument(fs.Arg(0))
	out, err := goadn.Dumps(doc)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(out)
}

func analyzeCmd(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	an := goadn.Analyze(loadDocument(fs.Arg(0)))
	if len(an.Unreferenced) > 0 {
		fmt.Printf("unreferenced: %s\n", strings.Join(an.Unreferenced, ", "))
	}
	if len(an.Undefined) > 0 {
		fmt.Printf("undefined: %s\n", strings.Join(an.Undefined, ", "))
	}
	if len(an.Unreferenced) == 0 && len(an.Undefined) == 0 {
		fmt.Println("no unreferenced or undefined types")
	}
	if len(an.Undefined) > 0 {
		os.Exit(1)
	}
}

func isYAML(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

func readFile(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("%v", err)
	}
	return data
}

func loadPackage(path string) *goadn.Package {
	data := readFile(path)
	var pkg *goadn.Package
	var err error
	if isYAML(path) {
		pkg, err = goadn.LoadYAML(data)
	} else {
		pkg, err = goadn.Loads(data)
	}
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	return pkg
}

func loadDocument(path string) *goadn.Schema {
	data := readFile(path)
	if isYAML(path) {
		fatalf("dump/analyze take JSON documents; convert %s first", path)
	}
	doc, err := goadn.DecodeSchema(data)
	if err != nil {
		fatalf("%v", err)
	}
	return doc
}

func reportError(err error) {
	if iss, ok := goadn.AsIssues(err); ok {
		printIssues(iss)
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func printIssues(iss goadn.Issues) {
	for _, it := range iss {
		fmt.Fprintf(os.Stderr, "%s\t%s\t%s\n", it.Path, it.Code, it.Message)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
