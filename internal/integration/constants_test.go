package integration_test

const (
	TestUserEmail     = "test@example.com"
	TestUserPassword  = "Test123!@#"
	TestUserFirstName = "John"
	TestUserLastName  = "Doe"

	TestAdminEmail    = "admin@example.com"
	TestAdminPassword = "Admin123!@#"

	TestMovieTitle       = "Test Movie"
	TestMovieDescription = "A test movie description."
	TestMovieDuration    = 120

	TestHallName       = "Red"
	TestHallRows       = 10
	TestHallSeatsInRow = 12
)
