package blog

// Users is the fixed author table, in display order.
var Users = []User{
	{ID: "user-1", Name: "髙橋慶祐", AvatarURL: "https://avatars.githubusercontent.com/u/1?v=4"},
	{ID: "user-2", Name: "佐藤太郎", AvatarURL: "https://avatars.githubusercontent.com/u/2?v=4"},
	{ID: "user-3", Name: "鈴木花子", AvatarURL: "https://avatars.githubusercontent.com/u/3?v=4"},
	{ID: "user-4", Name: "松本次郎", AvatarURL: "https://avatars.githubusercontent.com/u/4?v=4"},
	{ID: "user-5", Name: "後藤優子", AvatarURL: "https://avatars.githubusercontent.com/u/5?v=4"},
}

// DefaultUser is the author assigned when an id is not in the table.
func DefaultUser() User { return Users[0] }

// UserByID looks up an author.
func UserByID(id string) (User, bool) {
	for _, u := range Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// UserIDByName maps a display name to its id.
func UserIDByName(name string) (string, bool) {
	for _, u := range Users {
		if u.Name == name {
			return u.ID, true
		}
	}
	return "", false
}

// UserNameByID maps an id to its display name.
func UserNameByID(id string) (string, bool) {
	u, ok := UserByID(id)
	return u.Name, ok
}

// AuthorOptions lists the selectable author names.
func AuthorOptions() []string {
	names := make([]string, len(Users))
	for i, u := range Users {
		names[i] = u.Name
	}
	return names
}
