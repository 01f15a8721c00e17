package routing

// Connection is a routing edge from an input to an output.
type Connection struct {
	In  int
	Out int
}

// Matrix records which inputs feed which outputs. The cell is the only
// record of a connection; session lifetime is derived from it by scanning.
type Matrix struct {
	cells [][]bool
	outs  int
}

// NewMatrix sizes a matrix to the enumerated device counts.
func NewMatrix(ins, outs int) *Matrix {
	cells := make([][]bool, ins)
	for i := range cells {
		cells[i] = make([]bool, outs)
	}
	return &Matrix{cells: cells, outs: outs}
}

// Set writes a cell and reports whether it changed. Callers validate
// indices first.
func (m *Matrix) Set(in, out int, connected bool) bool {
	if m.cells[in][out] == connected {
		return false
	}
	m.cells[in][out] = connected
	return true
}

// Connected reports whether in feeds out.
func (m *Matrix) Connected(in, out int) bool {
	return m.cells[in][out]
}

// RowActive reports whether the input feeds any output.
func (m *Matrix) RowActive(in int) bool {
	for _, c := range m.cells[in] {
		if c {
			return true
		}
	}
	return false
}

// ColumnActive reports whether any input feeds the output.
func (m *Matrix) ColumnActive(out int) bool {
	for _, row := range m.cells {
		if row[out] {
			return true
		}
	}
	return false
}

// Connections lists set cells in row-major order.
func (m *Matrix) Connections() []Connection {
	var conns []Connection
	for in, row := range m.cells {
		for out, c := range row {
			if c {
				conns = append(conns, Connection{In: in, Out: out})
			}
		}
	}
	return conns
}
