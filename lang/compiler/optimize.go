package compiler

// Optimize runs the optimizer pass over p. It is currently the identity
// transform: Ink's register allocator already does the only optimization
// the language needs (see scope.go), so this pass exists to give
// --debug-optimize a well-defined output to print without committing to a
// particular optimization strategy yet.
func Optimize(p *Program) *Program {
	return p
}
