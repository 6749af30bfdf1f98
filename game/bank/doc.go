// Package bank provides reusable question sets loaded from disk.
//
// Hosts normally paste question text directly when creating a game, but a
// server can also ship a directory of prepared sets. Each *.txt file in the
// bank directory holds one set in the standard ">|<" line format and is
// addressed by its basename, so "capitals.txt" becomes the set "capitals".
//
// Usage:
//
//	mgr, err := bank.NewManager("questions")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	questions, err := mgr.Load("capitals")
//	sets := mgr.List()
//
// Sets are parsed once at startup and cached; Reload rescans the directory
// on demand. The manager is safe for concurrent use.
package bank
