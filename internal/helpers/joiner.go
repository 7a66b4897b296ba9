package helpers

// Joiner concatenates generated code. The total size is tracked as pieces are
// added so the result is allocated exactly once.
type Joiner struct {
	pieces   []string
	length   int
	lastByte byte
}

func (j *Joiner) AddString(data string) {
	if len(data) > 0 {
		j.lastByte = data[len(data)-1]
	}
	j.pieces = append(j.pieces, data)
	j.length += len(data)
}

func (j *Joiner) AddBytes(data []byte) {
	j.AddString(string(data))
}

func (j *Joiner) LastByte() byte {
	return j.lastByte
}

func (j *Joiner) Length() int {
	return j.length
}

func (j *Joiner) EnsureNewlineAtEnd() {
	if j.length > 0 && j.lastByte != '\n' {
		j.AddString("\n")
	}
}

func (j *Joiner) Done() string {
	if len(j.pieces) == 1 {
		return j.pieces[0]
	}
	buffer := make([]byte, 0, j.length)
	for _, piece := range j.pieces {
		buffer = append(buffer, piece...)
	}
	return string(buffer)
}
