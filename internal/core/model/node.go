package model

// Attributes is the administrative metadata of a parcel. Values are passed
// through to the store unchanged.
type Attributes struct {
	ParID       string `json:"parId"`
	ParNum      string `json:"parNum"`
	ShapeLength string `json:"shapeLength"`
	ShapeArea   string `json:"shapeArea"`
	Freguesia   string `json:"freguesia"`
	Municipio   string `json:"municipio"`
	Ilha        string `json:"ilha"`
}

// Parcel is one cadastral record. ID is the node key in the store.
type Parcel struct {
	ID         string     `json:"id"`
	Owner      string     `json:"owner"`
	Geometry   string     `json:"geometry"` // raw WKT or GeoJSON text
	Attributes Attributes `json:"attributes"`
}

// Properties returns the node properties written for p.
func (p Parcel) Properties() map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID,
		"owner":       p.Owner,
		"geometry":    p.Geometry,
		"parId":       p.Attributes.ParID,
		"parNum":      p.Attributes.ParNum,
		"shapeLength": p.Attributes.ShapeLength,
		"shapeArea":   p.Attributes.ShapeArea,
		"freguesia":   p.Attributes.Freguesia,
		"municipio":   p.Attributes.Municipio,
		"ilha":        p.Attributes.Ilha,
	}
}

// Owner is the party holding one or more parcels. It has no attributes
// beyond its identifier.
type Owner struct {
	ID string `json:"id"`
}

// IDSet is a set of node identifiers.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}
