package rotation

// Cursor хранит индекс текущей новости.
// Нулевое значение это пустое состояние (Empty)
type Cursor struct {
	index  int
	length int
}

// Reset вызывается при каждой замене ленты: курсор всегда встает на первую новость.
func (c *Cursor) Reset(length int) {
	if length < 0 {
		length = 0
	}

	c.length = length
	c.index = 0
}

// Advance двигает курсор по кругу в обе стороны.
// На пустой ленте и на ленте из одной новости ничего не делает
func (c *Cursor) Advance(delta int) {
	if c.length <= 1 {
		return
	}

	c.index = ((c.index+delta)%c.length + c.length) % c.length
}

// Select ставит курсор на i, если такой индекс есть.
// Индекс из интерфейса мог устареть после обновления ленты, поэтому промах просто игнорируем
func (c *Cursor) Select(i int) bool {
	if c.length == 0 || i < 0 || i >= c.length {
		return false
	}

	c.index = i
	return true
}

// Index возвращает false, когда лента пуста.
func (c Cursor) Index() (int, bool) {
	if c.length == 0 {
		return -1, false
	}

	return c.index, true
}

func (c Cursor) Len() int {
	return c.length
}

func (c Cursor) Empty() bool {
	return c.length == 0
}
