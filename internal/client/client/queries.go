package client

const userFields = `id email firstName lastName phoneNumber role isVerified`

const (
	loginMutation = `mutation Login($email: String!, $password: String!) {
  login(email: $email, password: $password) {
    __typename
    ... on AuthPayload { accessToken refreshToken hasConsent user { ` + userFields + ` } }
    ... on AuthError { code message }
  }
}`

	registerMutation = `mutation Register($input: RegisterInput!) {
  register(input: $input) {
    __typename
    ... on AuthPayload { accessToken refreshToken hasConsent user { ` + userFields + ` } }
    ... on AuthError { code message }
  }
}`

	verifyTokenQuery = `query VerifyToken {
  verifyToken {
    __typename
    ... on TokenVerification { valid role user { ` + userFields + ` } }
    ... on AuthError { code message }
  }
}`

	refreshTokenMutation = `mutation RefreshToken($refreshToken: String!) {
  refreshToken(refreshToken: $refreshToken) {
    __typename
    ... on AuthTokens { accessToken refreshToken }
    ... on AuthError { code message }
  }
}`

	logoutMutation = `mutation Logout($refreshToken: String!) {
  logout(refreshToken: $refreshToken) {
    __typename
    ... on LogoutResult { success }
    ... on AuthError { code message }
  }
}`

	assignRoleMutation = `mutation AssignRole($role: UserRole!) {
  assignRole(role: $role) {
    __typename
    ... on User { ` + userFields + ` }
    ... on AuthError { code message }
  }
}`

	consentStatusQuery = `query ConsentStatus {
  consentStatus { hasConsent policyVersion }
}`

	acceptAllConsentMutation = `mutation AcceptAllConsent {
  acceptAllConsent {
    __typename
    ... on ConsentRecord { id }
    ... on ConsentError { message }
  }
}`

	rejectOptionalConsentMutation = `mutation RejectOptionalConsent {
  rejectOptionalConsent {
    __typename
    ... on ConsentRecord { id }
    ... on ConsentError { message }
  }
}`

	updateConsentMutation = `mutation UpdateConsent($preferences: ConsentPreferencesInput!, $policyVersion: String!) {
  updateConsent(preferences: $preferences, policyVersion: $policyVersion) {
    __typename
    ... on ConsentRecord { id }
    ... on ConsentError { message }
  }
}`

	featureGateQuery = `query FeatureGate {
  featureGate {
    __typename
    ... on FeatureGateSnapshot {
      availableFeatures { featureId }
      lockedFeatures { featureId requiredLevel requiredLevelDisplay }
      currentLevel crsScore nextLevel pointsToNextLevel
    }
    ... on AuthError { code message }
  }
}`

	crsScoreQuery = `query CRSScore {
  crsScore {
    __typename
    ... on CRSScore { totalScore level nextLevel pointsToNextLevel }
    ... on AuthError { code message }
  }
}`
)
