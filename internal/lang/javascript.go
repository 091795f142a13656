package lang

func init() {
	Register(&Spec{
		Language:       JavaScript,
		FileExtensions: []string{".js", ".jsx", ".mjs", ".cjs"},

		LexicalDeclaration:       "lexical_declaration",
		VariableDeclarator:       "variable_declarator",
		VariableDeclarationKinds: []string{"variable_declaration"},

		FunctionNodeTypes: []string{
			"function_declaration",
			"generator_function_declaration",
			"function_expression",
			"arrow_function",
			"method_definition",
		},

		StringNodeTypes:    []string{"string"},
		TemplateNodeType:   "template_string",
		TemplateSubNode:    "template_substitution",
		BinaryExprNode:     "binary_expression",
		CallExprNode:       "call_expression",
		MemberExprNode:     "member_expression",
		SubscriptExprNode:  "subscript_expression",
		TernaryExprNode:    "ternary_expression",
		AssignmentExprNode: "assignment_expression",
	})
}
