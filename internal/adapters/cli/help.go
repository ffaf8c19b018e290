package cli

import "sort"

func (c *CLI) printHelp(command string) {
	if command == "" {
		names := make([]string, 0, len(commandHelp))
		for name := range commandHelp {
			names = append(names, name)
		}
		sort.Strings(names)

		c.printf("Available commands:\n")
		for _, name := range names {
			c.printf("  %s\n", name)
		}
		c.printf("\nStart a line with '/' to search as you type.\nUse 'help <command>' for details.\n")
		return
	}
	if help, ok := commandHelp[command]; ok {
		c.printf("%s\n", help)
		return
	}
	c.printf("Unknown command: %s\n", command)
}

var commandHelp = map[string]string{
	"search": `Syntax: search <text>   (or /<text>)
Description: Searches title, location and type. An empty text clears the search.
Example: search lake`,

	"type": `Syntax: type <All|House|Apartment|Plot|...>
Description: Shows only properties of the given type. "All" removes the filter.
Example: type plot`,

	"sort": `Syntax: sort <featured|price-low|price-high|beds>
Description: Changes the order of results and returns to the first page.
Example: sort price-high`,

	"next":    "Syntax: next\nDescription: Goes to the next page of results.",
	"prev":    "Syntax: prev\nDescription: Goes to the previous page of results.",
	"page":    "Syntax: page <n>\nDescription: Goes to page n (clamped to the available pages).\nExample: page 2",
	"refresh": "Syntax: refresh\nDescription: Repeats the current search, e.g. after a failure.",
	"show":    "Syntax: show\nDescription: Prints the current page again.",

	"like": `Syntax: like <property id>
Description: Adds the property to your wishlist or removes it. Requires sign in.
Example: like 3`,

	"wishlist": "Syntax: wishlist [sync]\nDescription: Shows how many properties are in your wishlist. sync reloads it from the server.",
	"details":  "Syntax: details <slug>\nDescription: Shows a single property.\nExample: details lake-view-plot",
	"login":    "Syntax: login <mobile>\nDescription: Sends a one-time code to the mobile number.\nExample: login +375291234567",
	"otp":      "Syntax: otp <code>\nDescription: Completes sign in with the received code.\nExample: otp 1234",
	"logout":   "Syntax: logout\nDescription: Signs out and clears the wishlist on this device.",
	"whoami":   "Syntax: whoami\nDescription: Shows the signed in user.",
	"status":   "Syntax: status\nDescription: Shows backend availability and the search state.",

	"inquiry": `Syntax: inquiry <property id|0> "<message>" [name] [email|mobile]
Description: Sends an inquiry about a property (0 for a general question).
Name and contacts default to the signed in user.
Example: inquiry 3 "Is the plot still available?" "Anna" anna@example.com`,

	"delete-account": "Syntax: delete-account --yes\nDescription: Permanently deletes your account and signs out.",
	"help":           "Syntax: help [command]",
	"exit":           "Syntax: exit | quit",
}
