package main

import "github.com/killallgit/segments-api/cmd"

// @title           Segments API
// @version         1.0.0
// @description     Video segment annotation API with per-user descriptions_prosody merging
// @contact.name    API Support
// @contact.url     https://github.com/killallgit/segments-api
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:5000
// @BasePath        /
// @schemes         http https
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token from /api/auth/login
func main() {
	cmd.Execute()
}
