package routes

type Tag string

const (
	TagAuth     Tag = "Authentication"
	TagProfiles Tag = "Profiles"
	TagHealth   Tag = "Health"
)

func (t Tag) String() string {
	return string(t)
}

var BearerAuth = []map[string][]string{
	{"bearer": {}},
}
