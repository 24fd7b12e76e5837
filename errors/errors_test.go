package errors

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestMarshalJSON(t *testing.T) {
	c := qt.New(t)

	raw, err := json.Marshal(ErrAlreadyVoted)
	c.Assert(err, qt.IsNil)
	c.Assert(string(raw), qt.Equals,
		`{"error":"identity already voted in this election","code":40018}`)

	// wrapped errors keep the code and extend the message
	wrapped := ErrNotWhitelisted.Withf("identity %s", "0x00")
	raw, err = json.Marshal(wrapped)
	c.Assert(err, qt.IsNil)
	c.Assert(string(raw), qt.Equals,
		`{"error":"identity is not whitelisted: identity 0x00","code":40017}`)
}

func TestWithPreservesCodeAndStatus(t *testing.T) {
	c := qt.New(t)

	base := ErrElectionActive
	derived := base.With("while setting choices").WithErr(fmt.Errorf("boom"))
	c.Assert(derived.Code, qt.Equals, base.Code)
	c.Assert(derived.HTTPstatus, qt.Equals, base.HTTPstatus)
	c.Assert(strings.HasPrefix(derived.Error(), base.Error()), qt.IsTrue)
}

func TestWrite(t *testing.T) {
	c := qt.New(t)

	rec := httptest.NewRecorder()
	ErrUnauthorized.Write(rec)
	c.Assert(rec.Code, qt.Equals, http.StatusUnauthorized)
	c.Assert(rec.Header().Get("Content-Type"), qt.Equals, "application/json")

	var body struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &body), qt.IsNil)
	c.Assert(body.Code, qt.Equals, ErrUnauthorized.Code)
	c.Assert(body.Error, qt.Equals, ErrUnauthorized.Error())
}

// TestErrorCodesAreUnique scans the package sources for vars initialized with
// an Error{...} literal and fails when two of them share a Code. Reflection
// cannot enumerate package-level vars, so the AST is the only way.
func TestErrorCodesAreUnique(t *testing.T) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, ".", func(info fs.FileInfo) bool {
		return strings.HasSuffix(info.Name(), ".go") && !strings.HasSuffix(info.Name(), "_test.go")
	}, 0)
	if err != nil {
		t.Fatalf("parse dir: %v", err)
	}
	pkg, ok := pkgs["errors"]
	if !ok {
		t.Fatal("package 'errors' not found")
	}

	seen := map[string][]string{}
	for _, f := range pkg.Files {
		ast.Inspect(f, func(n ast.Node) bool {
			vs, ok := n.(*ast.ValueSpec)
			if !ok {
				return true
			}
			for i, name := range vs.Names {
				if i >= len(vs.Values) {
					continue
				}
				cl, ok := vs.Values[i].(*ast.CompositeLit)
				if !ok {
					continue
				}
				ident, ok := cl.Type.(*ast.Ident)
				if !ok || ident.Name != "Error" {
					continue
				}
				for _, elt := range cl.Elts {
					kv, ok := elt.(*ast.KeyValueExpr)
					if !ok {
						continue
					}
					if key, ok := kv.Key.(*ast.Ident); ok && key.Name == "Code" {
						if lit, ok := kv.Value.(*ast.BasicLit); ok && lit.Kind == token.INT {
							seen[lit.Value] = append(seen[lit.Value], name.Name)
						}
					}
				}
			}
			return true
		})
	}

	for code, names := range seen {
		if len(names) > 1 {
			t.Errorf("duplicate Error.Code %s: %s", code, strings.Join(names, ", "))
		}
	}
}
