package redis

import "fmt"

const (
	// KeyPrefixFolder is the prefix for folder mapping keys
	KeyPrefixFolder = "tabsaver:folder:"
	// KeyAllFolders is the key for the set of all mapped folder keys
	KeyAllFolders = "tabsaver:folders:all"
)

// FolderKey returns the Redis key for a folder mapping
func FolderKey(key string) string {
	return KeyPrefixFolder + key
}

// AllFoldersKey returns the key for the set of all folder keys
func AllFoldersKey() string {
	return KeyAllFolders
}

// ExtractFolderKey extracts the folder key from a Redis key
func ExtractFolderKey(redisKey string) (string, error) {
	if len(redisKey) <= len(KeyPrefixFolder) || redisKey[:len(KeyPrefixFolder)] != KeyPrefixFolder {
		return "", fmt.Errorf("invalid folder key: %s", redisKey)
	}
	return redisKey[len(KeyPrefixFolder):], nil
}
