package util

// Param is a published state value identified by Key
type Param struct {
	Key string
	Val interface{}
}

// UniqueID returns the cache id of the parameter
func (p Param) UniqueID() string {
	return p.Key
}
