package compiler_test

import (
	"testing"

	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/value"
	"github.com/stretchr/testify/require"
)

func TestDisassemble(t *testing.T) {
	prog := &compiler.Program{
		Blocks: []*compiler.Block{
			{
				Name:   "main",
				Parent: -1,
				Slots:  2,
				Consts: []compiler.Const{compiler.ConstValue{V: value.Number(3)}},
				Code: []compiler.Instr{
					{Op: compiler.LOAD_CONST, Dest: 0, Arg: 0},
					{Op: compiler.MOV, Dest: 1, X: 0},
				},
			},
		},
	}

	out := prog.Disassemble()
	require.Contains(t, out, "block 0: main")
	require.Contains(t, out, "loadk    r0, #0")
	require.Contains(t, out, "mov      r1, r0")
	require.Contains(t, out, "number 3")
}
