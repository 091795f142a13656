package lang

import "testing"

func TestForExtension(t *testing.T) {
	for _, ext := range []string{".js", ".jsx", ".mjs", ".cjs"} {
		spec := ForExtension(ext)
		if spec == nil {
			t.Fatalf("ForExtension(%q) = nil, want javascript spec", ext)
		}
		if spec.Language != JavaScript {
			t.Errorf("ForExtension(%q).Language = %q, want %q", ext, spec.Language, JavaScript)
		}
	}

	if spec := ForExtension(".py"); spec != nil {
		t.Errorf("ForExtension(.py) = %+v, want nil", spec)
	}
}

func TestForLanguage(t *testing.T) {
	spec := ForLanguage(JavaScript)
	if spec == nil {
		t.Fatal("ForLanguage(JavaScript) = nil")
	}
	if spec.LexicalDeclaration != "lexical_declaration" {
		t.Errorf("LexicalDeclaration = %q, want lexical_declaration", spec.LexicalDeclaration)
	}
	if spec.CallExprNode != "call_expression" {
		t.Errorf("CallExprNode = %q, want call_expression", spec.CallExprNode)
	}

	if spec := ForLanguage("cobol"); spec != nil {
		t.Errorf("ForLanguage(cobol) = %+v, want nil", spec)
	}
}

func TestRegisterNewExtensionLeavesOthers(t *testing.T) {
	before := ForExtension(".js")
	Register(&Spec{Language: "test-lang", FileExtensions: []string{".test-only"}})
	after := ForExtension(".test-only")
	if after == nil || after.Language != "test-lang" {
		t.Fatalf("Register did not install spec for.test-only")
	}
	if ForExtension(".js") != before {
		t.Errorf("registering a new extension should not disturb.js")
	}
}
