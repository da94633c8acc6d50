package pysrc

import "sort"

// Dimension identifiers, used as weight keys in configuration and as score
// keys in similarity results.
const (
	DimClassName     = "class_name"
	DimMethodNames   = "method_names"
	DimImports       = "imports"
	DimDecorators    = "decorators"
	DimBaseClasses   = "base_classes"
	DimFunctionNames = "function_names"
)

// Dimensions lists the six feature dimensions in report order.
var Dimensions = []string{
	DimClassName,
	DimMethodNames,
	DimImports,
	DimDecorators,
	DimBaseClasses,
	DimFunctionNames,
}

// FeatureSet holds the six identifier sets one file contributes to
// similarity scoring. Each slice is sorted and duplicate-free; empty slices
// are valid and score zero on their dimension.
type FeatureSet struct {
	ClassNames    []string
	MethodNames   []string
	FunctionNames []string
	Imports       []string
	Decorators    []string
	BaseClasses   []string
}

// Features reduces the structure to its six identifier sets. Methods and
// base classes merge across all classes; imports reduce to their root
// package segment; decorators include class and function decorators alike.
func (s *FileStructure) Features() *FeatureSet {
	var methods, bases, decorators, classNames, functions, imports []string
	for _, cls := range s.Classes {
		classNames = append(classNames, cls.Name)
		bases = append(bases, cls.Bases...)
		decorators = append(decorators, cls.Decorators...)
		for _, m := range cls.Methods {
			methods = append(methods, m.Name)
			decorators = append(decorators, m.Decorators...)
		}
	}
	for _, fn := range s.Functions {
		functions = append(functions, fn.Name)
		decorators = append(decorators, fn.Decorators...)
	}
	for _, imp := range s.Imports {
		if imp.Root != "" {
			imports = append(imports, imp.Root)
		}
	}
	return &FeatureSet{
		ClassNames:    uniqueSorted(classNames),
		MethodNames:   uniqueSorted(methods),
		FunctionNames: uniqueSorted(functions),
		Imports:       uniqueSorted(imports),
		Decorators:    uniqueSorted(decorators),
		BaseClasses:   uniqueSorted(bases),
	}
}

// Dimension returns the identifier set for a dimension id, nil for unknown
// ids.
func (f *FeatureSet) Dimension(id string) []string {
	switch id {
	case DimClassName:
		return f.ClassNames
	case DimMethodNames:
		return f.MethodNames
	case DimImports:
		return f.Imports
	case DimDecorators:
		return f.Decorators
	case DimBaseClasses:
		return f.BaseClasses
	case DimFunctionNames:
		return f.FunctionNames
	}
	return nil
}

func uniqueSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
